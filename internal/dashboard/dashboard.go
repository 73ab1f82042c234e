/*
Package dashboard composes the recommendation table, the feedback ledger and
the catalog search into the operations a dashboard front end calls.

Every call reads the ledger afresh; nothing is cached between interactions.
*/
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/khanglvm/reco-hub/internal/explain"
	"github.com/khanglvm/reco-hub/internal/filter"
	"github.com/khanglvm/reco-hub/internal/ledger"
	"github.com/khanglvm/reco-hub/internal/logging"
	"github.com/khanglvm/reco-hub/internal/record"
	"github.com/khanglvm/reco-hub/internal/resolver"
	"github.com/khanglvm/reco-hub/internal/search"
)

// ErrUnknownUser is returned when a user has no recommendation record.
var ErrUnknownUser = errors.New("unknown user")

// Options tune presentation.
type Options struct {
	// TopFeatures is the explanation depth; 0 shows every feature.
	TopFeatures int

	// RecentVotes is the size of the recent feedback panel.
	RecentVotes int
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{TopFeatures: explain.DefaultTopN, RecentVotes: 5}
}

// Service serves dashboard interactions.
type Service struct {
	table  *record.Table
	ledger *ledger.Ledger
	index  *search.CatalogIndex
	opts   Options
}

// New builds a service and indexes the table's catalog.
func New(table *record.Table, l *ledger.Ledger, opts Options) (*Service, error) {
	index, err := search.NewCatalogIndex(table.Catalog())
	if err != nil {
		return nil, fmt.Errorf("failed to index users: %w", err)
	}
	return &Service{table: table, ledger: l, index: index, opts: opts}, nil
}

// Close releases the search index.
func (s *Service) Close() error {
	return s.index.Close()
}

// Users lists catalog ids containing query, in catalog order.
func (s *Service) Users(query string) ([]string, error) {
	return s.index.Search(query, 0)
}

// Resolve maps free text to a catalog user.
func (s *Service) Resolve(text string) resolver.Result {
	return resolver.Resolve(text, s.index.IDs())
}

// Row is one recommendation as the table shows it.
type Row struct {
	record.Item
	Band filter.Band `json:"band"`
	Vote ledger.Vote `json:"vote"`
}

// Page is the filtered recommendation table of a user.
type Page struct {
	UserID         string                `json:"user_id"`
	Rows           []Row                 `json:"rows"`
	Total          int                   `json:"total"`
	VisitedStudies []string              `json:"visited_studies"`
	Warnings       []record.FieldWarning `json:"warnings,omitempty"`
}

// Recommendations returns the user's filtered recommendations with the
// current vote of each row.
func (s *Service) Recommendations(user string, c filter.Criteria) (Page, error) {
	set, err := s.parse(user)
	if err != nil {
		return Page{}, err
	}

	entries, err := s.ledger.ListForUser(user)
	if err != nil {
		return Page{}, err
	}
	votes := make(map[string]ledger.Vote, len(entries))
	for _, e := range entries {
		votes[e.ProductID] = e.Vote
	}

	view := filter.Apply(set, c)
	page := Page{
		UserID:         user,
		Rows:           make([]Row, 0, len(view.Items)),
		Total:          view.Total,
		VisitedStudies: set.VisitedStudies,
		Warnings:       set.Warnings,
	}
	for _, item := range view.Items {
		page.Rows = append(page.Rows, Row{
			Item: item,
			Band: filter.ScoreBand(item.FinalScore),
			Vote: votes[item.ProductID],
		})
	}
	return page, nil
}

// Vote toggles direction for the pair and returns the stored vote.
// The catalog is not consulted.
func (s *Service) Vote(user, product string, direction ledger.Vote) (ledger.Vote, error) {
	v, err := s.ledger.Toggle(user, product, direction)
	if err != nil {
		return ledger.None, err
	}
	logging.Info().Str("user", user).Str("product", product).Stringer("vote", v).Msg("feedback recorded")
	return v, nil
}

// SetVote stores vote for the pair.
func (s *Service) SetVote(user, product string, vote ledger.Vote) error {
	if err := s.ledger.SetVote(user, product, vote); err != nil {
		return err
	}
	logging.Info().Str("user", user).Str("product", product).Stringer("vote", vote).Msg("feedback recorded")
	return nil
}

// Feature is one explanation row.
type Feature struct {
	record.FeatureImpact
	Band explain.Band `json:"band"`
}

// Explanation lists the features behind one recommended product.
type Explanation struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Features  []Feature `json:"features"`
}

// Explain uses the configured explanation depth.
func (s *Service) Explain(user, product string) (Explanation, error) {
	return s.ExplainTop(user, product, s.opts.TopFeatures)
}

// ExplainTop returns the first topN features for product; topN <= 0 means all.
func (s *Service) ExplainTop(user, product string, topN int) (Explanation, error) {
	set, err := s.parse(user)
	if err != nil {
		return Explanation{}, err
	}

	impacts := explain.Explain(set.Explanations, product, topN)
	out := Explanation{UserID: user, ProductID: product, Features: make([]Feature, 0, len(impacts))}
	for _, fi := range impacts {
		out.Features = append(out.Features, Feature{FeatureImpact: fi, Band: explain.ImpactBand(fi.Impact)})
	}
	return out, nil
}

// Feedback is the user's feedback panel.
type Feedback struct {
	UserID  string         `json:"user_id"`
	Recent  []ledger.Entry `json:"recent"`
	Summary ledger.Summary `json:"summary"`
}

// Feedback uses the configured panel size.
func (s *Service) Feedback(user string) (Feedback, error) {
	return s.FeedbackRecent(user, s.opts.RecentVotes)
}

// FeedbackRecent returns the last n votes and the vote summary of user.
func (s *Service) FeedbackRecent(user string, n int) (Feedback, error) {
	recent, err := s.ledger.RecentForUser(user, n)
	if err != nil {
		return Feedback{}, err
	}
	summary, err := s.ledger.Summary(user)
	if err != nil {
		return Feedback{}, err
	}
	return Feedback{UserID: user, Recent: recent, Summary: summary}, nil
}

// Export writes the user's feedback, or the whole ledger for an empty user.
func (s *Service) Export(w io.Writer, user string) error {
	if user == "" {
		return s.ledger.ExportAll(w)
	}
	return s.ledger.ExportForUser(w, user)
}

// Report summarises how one record parsed.
type Report struct {
	UserID   string                `json:"user_id"`
	Items    int                   `json:"items"`
	Warnings []record.FieldWarning `json:"warnings,omitempty"`
}

// Check parses every record and reports the recovered problems.
func (s *Service) Check(ctx context.Context, workers int) ([]Report, error) {
	sets, err := s.table.ParseAll(ctx, workers)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(sets))
	for _, set := range sets {
		reports = append(reports, Report{
			UserID:   set.UserID,
			Items:    set.EffectiveLength(),
			Warnings: set.Warnings,
		})
	}
	return reports, nil
}

func (s *Service) parse(user string) (*record.RecommendationSet, error) {
	raw, ok := s.table.Row(user)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}

	set := record.Parse(raw)
	for _, w := range set.Warnings {
		logging.Warn().
			Str("user", user).
			Str("field", w.Field).
			Str("kind", string(w.Kind)).
			Str("detail", w.Detail).
			Msg("recovered malformed record")
	}
	return set, nil
}
