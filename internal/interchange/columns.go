package interchange

// Display languages for headers and alias preference.
const (
	LanguageJapanese = "ja"
	LanguageEnglish  = "en"
)

// Field is a logical column of the main sheet.
type Field int

const (
	FieldNo Field = iota
	FieldName
	FieldStart
	FieldEnd
	FieldFirstProof
	FieldFinalProof
	FieldColor
	FieldCellTexts
	FieldCellColors
	FieldPayload
)

// column names one field in each language plus its internal key.
type column struct {
	field    Field
	japanese string
	english  string
	key      string
	width    float64
}

// columns lists the main sheet in export order.
var columns = []column{
	{FieldNo, "No.", "No.", "no", 5},
	{FieldName, "タスク名", "Task Name", "name", 20},
	{FieldStart, "開始日", "Start Date", "startDate", 12},
	{FieldEnd, "終了日", "End Date", "endDate", 12},
	{FieldFirstProof, "初校日", "First Proof", "firstProofDate", 12},
	{FieldFinalProof, "校了日", "Final Proof", "finalProofDate", 12},
	{FieldColor, "色", "Color", "color", 10},
	{FieldCellTexts, "セルデータ", "Cell Data", "cellData", 30},
	{FieldCellColors, "セルカラー", "Cell Color", "cellColor", 30},
	{FieldPayload, "タスク完全データ", "Full Task Data", "taskData", 50},
}

// Sheet and metadata names.
var (
	mainSheet  = column{japanese: "ガントチャート", english: "Gantt Chart", key: "tasks"}
	metaSheet  = column{japanese: "メタデータ", english: "Metadata", key: "metadata"}
	metaColumn = column{japanese: "メタデータ", english: "Metadata", key: "metadata"}
)

func (c column) header(lang string) string {
	if lang == LanguageEnglish {
		return c.english
	}
	return c.japanese
}

// names orders a column's aliases: display language, English, internal key,
// then Japanese so Japanese files still import under an English display.
func (c column) names(lang string) []string {
	return dedupe([]string{c.header(lang), c.english, c.key, c.japanese})
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Aliases is the static column-resolution table for one display language.
type Aliases struct {
	Columns     map[Field][]string
	MetaSheets  []string
	MetaColumns []string
}

// AliasesFor builds the alias table for lang.
func AliasesFor(lang string) Aliases {
	a := Aliases{
		Columns:     make(map[Field][]string, len(columns)),
		MetaSheets:  metaSheet.names(lang),
		MetaColumns: metaColumn.names(lang),
	}
	for _, c := range columns {
		a.Columns[c.field] = c.names(lang)
	}
	return a
}

// Header returns the display header of f in lang.
func Header(lang string, f Field) string {
	for _, c := range columns {
		if c.field == f {
			return c.header(lang)
		}
	}
	return ""
}
