// Package listing loads logged interactions and shapes them for the list and
// detail views.
package listing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hcp-crm/internal/interaction"
)

// Source fetches every logged interaction, oldest first.
type Source interface {
	ListInteractions(ctx context.Context) ([]interaction.Record, error)
}

// Card is one entry of the interaction grid.
type Card struct {
	ID       int64
	HCPName  string
	Type     string
	Virtual  bool
	Topics   string
	Date     string
	Outcome  string
	Selected bool
}

// Detail is the content of the detail overlay.
type Detail struct {
	ID                   int64
	HCPName              string
	Attendees            string
	InteractionType      string
	Topics               string
	MaterialsDistributed string
	Outcomes             string
	FollowUp             string
	Summary              string
	Date                 string
	Time                 string
	CreatedAt            string
	LastUpdated          string
}

// View is everything the list screen renders.
type View struct {
	Cards    []Card
	Total    int
	Selected *Detail
	// Err is set when the fetch failed; Cards is then empty.
	Err error
}

const topicPreviewRunes = 140

// Loader builds views from a Source.
type Loader struct {
	src    Source
	loc    *time.Location
	logger *zap.Logger
}

// NewLoader returns a loader formatting timestamps in loc (time.Local when nil).
func NewLoader(src Source, loc *time.Location, logger *zap.Logger) *Loader {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, loc: loc, logger: logger}
}

// Load fetches the interactions once and returns them newest first. selectedID,
// when non-zero and present, fills View.Selected.
func (l *Loader) Load(ctx context.Context, selectedID int64) View {
	records, err := l.src.ListInteractions(ctx)
	if err != nil {
		l.logger.Warn("failed to load interactions", zap.Error(err))
		return View{Err: err}
	}

	ordered := interaction.DisplayOrder(records)
	v := View{Cards: make([]Card, 0, len(ordered)), Total: len(ordered)}
	for _, r := range ordered {
		selected := selectedID != 0 && r.ID == selectedID
		v.Cards = append(v.Cards, l.card(r, selected))
		if selected && v.Selected == nil {
			d := l.detail(r)
			v.Selected = &d
		}
	}
	return v
}

func (l *Loader) card(r interaction.Record, selected bool) Card {
	return Card{
		ID:       r.ID,
		HCPName:  r.HCPName,
		Type:     string(r.InteractionType),
		Virtual:  r.InteractionType == interaction.TypeVirtual,
		Topics:   interaction.Truncate(r.Topics, topicPreviewRunes),
		Date:     interaction.FormatDate(r.Date, l.loc),
		Outcome:  interaction.Or(r.Outcomes, "Pending"),
		Selected: selected,
	}
}

func (l *Loader) detail(r interaction.Record) Detail {
	return Detail{
		ID:                   r.ID,
		HCPName:              r.HCPName,
		Attendees:            interaction.Or(r.Attendees, "None"),
		InteractionType:      string(r.InteractionType),
		Topics:               r.Topics,
		MaterialsDistributed: interaction.Or(r.MaterialsDistributed, "None"),
		Outcomes:             interaction.Or(r.Outcomes, "Pending"),
		FollowUp:             interaction.Or(r.FollowUp, "None"),
		Summary:              r.Summary,
		Date:                 interaction.FormatDate(r.Date, l.loc),
		Time:                 r.Time,
		CreatedAt:            interaction.FormatDateTime(r.CreatedAt, l.loc),
		LastUpdated:          interaction.FormatDateTime(r.LastUpdated(), l.loc),
	}
}
