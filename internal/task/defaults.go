package task

// DefaultTasks returns the built-in dataset shown when nothing has been saved.
func DefaultTasks() []Task {
	return []Task{
		{
			ID:             "task-1",
			Name:           "企画書作成",
			StartDate:      "2025-07-01",
			EndDate:        "2025-07-05",
			FirstProofDate: "2025-07-03",
			FinalProofDate: "2025-07-05",
			Color:          "#FF5733",
			Cells: map[string]CellOverride{
				"2025-07-01": {Text: "企画", Color: "#FF5733"},
				"2025-07-02": {Text: "作成", Color: "#FF7033"},
				"2025-07-03": {Text: "初校", Color: "#FF8533"},
				"2025-07-04": {Text: "レビュー", Color: "#FFA033"},
				"2025-07-05": {Text: "完了", Color: "#FFB533"},
			},
		},
		{
			ID:        "task-2",
			Name:      "デザイン作成",
			StartDate: "2025-07-06",
			EndDate:   "2025-07-15",
			Color:     "#33FF57",
			Cells: map[string]CellOverride{
				"2025-07-06": {Text: "ラフ"},
				"2025-07-07": {Text: "デザイン"},
				"2025-07-08": {Text: "デザイン"},
				"2025-07-09": {Text: "レビュー"},
				"2025-07-10": {Text: "修正"},
				"2025-07-11": {Text: "修正"},
				"2025-07-12": {Text: "最終確認"},
				"2025-07-13": {Text: "最終確認"},
				"2025-07-14": {Text: "完了"},
				"2025-07-15": {Text: "納品"},
			},
		},
	}
}
