package interchange

import (
	"context"
	"fmt"
	"log/slog"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/task"
)

// PromptKind says what a caller is asked to confirm.
type PromptKind int

const (
	// PromptPartial asks whether to continue with the valid subset of rows.
	PromptPartial PromptKind = iota
	// PromptBackup asks whether to restore from the metadata backup.
	PromptBackup
	// PromptReplace asks whether decoded tasks may replace the store.
	PromptReplace
	// PromptRestore asks whether a history snapshot may replace the store.
	PromptRestore
)

// Prompt is one confirmation request.
type Prompt struct {
	Kind  PromptKind
	Tier  TierName
	Count int
	// Partial carries the failure count and reasons for PromptPartial.
	Partial *gerrors.Error
	// Label names the snapshot offered by PromptRestore.
	Label string
}

// Message renders the prompt for a human.
func (p Prompt) Message() string {
	switch p.Kind {
	case PromptPartial:
		return fmt.Sprintf("%s\nContinue with the %d valid task(s)?", p.Partial.UserMessage(), p.Count)
	case PromptBackup:
		return fmt.Sprintf("The task rows could not be read, but the metadata backup holds %d task(s).\nRestore from the backup?", p.Count)
	case PromptRestore:
		return fmt.Sprintf("Restore the %d task(s) saved at %s? The current data will be replaced.", p.Count, p.Label)
	default:
		return fmt.Sprintf("Import %d task(s) from %s data? The current data will be replaced.", p.Count, p.Tier)
	}
}

// Confirmer answers prompts on behalf of the user.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Always is a Confirmer that accepts every prompt.
var Always = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

// policy is how the chain reacts to a tier's result.
type policy int

const (
	// policyTerminal: any attempt ends the chain. Partial success needs
	// confirmation, total failure is final.
	policyTerminal policy = iota
	// policyConfirm: success needs confirmation; decline falls through.
	policyConfirm
	// policyAccept: success is taken as is.
	policyAccept
)

// Tier is one step of the decode chain.
type Tier struct {
	Name   TierName
	Decode TierFunc
	policy policy
}

// Result is a successful decode.
type Result struct {
	Tasks []task.Task
	Tier  TierName
	// Rejections lists every row or payload that was skipped on the way.
	Rejections []Rejection
}

// Decoder runs the tier chain.
type Decoder struct {
	lang   string
	newID  task.IDFunc
	logger *slog.Logger
	tiers  []Tier
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLanguage sets the display language that leads column resolution.
func WithLanguage(lang string) DecoderOption {
	return func(d *Decoder) { d.lang = lang }
}

// WithIDFunc sets the id generator for legacy rows.
func WithIDFunc(fn task.IDFunc) DecoderOption {
	return func(d *Decoder) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// WithLogger sets the logger for rejected rows and repaired blocks.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecoder creates a Decoder with the standard three tiers.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		lang:   LanguageJapanese,
		newID:  task.NewImportedID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.tiers = []Tier{
		{Name: TierFullFidelity, Decode: FullFidelity, policy: policyTerminal},
		{Name: TierBackup, Decode: Backup, policy: policyConfirm},
		{Name: TierLegacy, Decode: Legacy(d.newID, d.logger), policy: policyAccept},
	}
	return d
}

// Tiers returns the decode chain in order.
func (d *Decoder) Tiers() []Tier {
	return d.tiers
}

// Decode runs each tier in order until one yields usable tasks. It never
// touches a store; the caller confirms and applies the result.
func (d *Decoder) Decode(ctx context.Context, wb *Workbook, c Confirmer) (*Result, error) {
	aliases := AliasesFor(d.lang)
	var rejected []Rejection

	for _, tier := range d.tiers {
		res := tier.Decode(wb, aliases)
		for _, r := range res.Rejections {
			d.logger.Warn("import row rejected", "tier", tier.Name, "row", r.Line, "reason", r.Reason)
		}
		rejected = append(rejected, res.Rejections...)
		if !res.Attempted {
			continue
		}

		switch tier.policy {
		case policyTerminal:
			failures := reasons(res.Rejections)
			if len(res.Tasks) == 0 {
				return nil, gerrors.ErrImportFailed("every row with task data failed to load", failures)
			}
			if len(res.Rejections) > 0 {
				partial := gerrors.ErrPartialImport(len(res.Tasks), failures)
				ok, err := c.Confirm(ctx, Prompt{Kind: PromptPartial, Tier: tier.Name, Count: len(res.Tasks), Partial: partial})
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, gerrors.ErrImportCancelled("import of partially valid data declined").WithCause(partial)
				}
			}
			return &Result{Tasks: res.Tasks, Tier: tier.Name, Rejections: res.Rejections}, nil

		case policyConfirm:
			if len(res.Tasks) == 0 {
				continue
			}
			ok, err := c.Confirm(ctx, Prompt{Kind: PromptBackup, Tier: tier.Name, Count: len(res.Tasks)})
			if err != nil {
				return nil, err
			}
			if ok {
				return &Result{Tasks: res.Tasks, Tier: tier.Name, Rejections: rejected}, nil
			}
			d.logger.Info("backup restore declined, trying legacy rows")

		case policyAccept:
			if len(res.Tasks) > 0 {
				return &Result{Tasks: res.Tasks, Tier: tier.Name, Rejections: rejected}, nil
			}
		}
	}
	return nil, gerrors.ErrImportFailed("no rows matched a known task format", reasons(rejected))
}

func reasons(rs []Rejection) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}
