package rpc

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/khanglvm/reco-hub/internal/filter"
	"github.com/khanglvm/reco-hub/internal/ledger"
)

type usersParams struct {
	Search string `json:"search"`
}

func (s *Server) handleUsers(raw json.RawMessage) (interface{}, error) {
	var p usersParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	users, err := s.svc.Users(p.Search)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"users": users}, nil
}

type resolveParams struct {
	Text string `json:"text" validate:"required"`
}

func (s *Server) handleResolve(raw json.RawMessage) (interface{}, error) {
	var p resolveParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.svc.Resolve(p.Text), nil
}

type recommendationsParams struct {
	User     string   `json:"user" validate:"required"`
	MinScore float64  `json:"min_score" validate:"gte=0,lte=1"`
	Products []string `json:"products"`
}

func (s *Server) handleRecommendations(raw json.RawMessage) (interface{}, error) {
	var p recommendationsParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.svc.Recommendations(p.User, filter.Criteria{MinScore: p.MinScore, IDSubstrings: p.Products})
}

type voteParams struct {
	User      string `json:"user" validate:"required"`
	Product   string `json:"product" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=like dislike"`
}

func (s *Server) handleVote(raw json.RawMessage) (interface{}, error) {
	var p voteParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	direction, err := ledger.ParseVote(p.Direction)
	if err != nil {
		return nil, err
	}
	v, err := s.svc.Vote(p.User, p.Product, direction)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"vote": v.String(), "value": int(v)}, nil
}

type setVoteParams struct {
	User    string `json:"user" validate:"required"`
	Product string `json:"product" validate:"required"`
	Vote    string `json:"vote" validate:"required"`
}

func (s *Server) handleSetVote(raw json.RawMessage) (interface{}, error) {
	var p setVoteParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	v, err := ledger.ParseVote(p.Vote)
	if err != nil {
		return nil, err
	}
	if err := s.svc.SetVote(p.User, p.Product, v); err != nil {
		return nil, err
	}
	return map[string]interface{}{"vote": v.String(), "value": int(v)}, nil
}

type explainParams struct {
	User    string `json:"user" validate:"required"`
	Product string `json:"product" validate:"required"`
	Top     *int   `json:"top" validate:"omitempty,gte=0"`
}

func (s *Server) handleExplain(raw json.RawMessage) (interface{}, error) {
	var p explainParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Top != nil {
		return s.svc.ExplainTop(p.User, p.Product, *p.Top)
	}
	return s.svc.Explain(p.User, p.Product)
}

type feedbackParams struct {
	User   string `json:"user" validate:"required"`
	Recent *int   `json:"recent" validate:"omitempty,gte=0"`
}

func (s *Server) handleFeedback(raw json.RawMessage) (interface{}, error) {
	var p feedbackParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if p.Recent != nil {
		return s.svc.FeedbackRecent(p.User, *p.Recent)
	}
	return s.svc.Feedback(p.User)
}

type exportParams struct {
	User string `json:"user"`
}

func (s *Server) handleExport(raw json.RawMessage) (interface{}, error) {
	var p exportParams
	if err := s.decodeParams(raw, &p); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.svc.Export(&buf, p.User); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"filename": ledger.ExportFileName(p.User, s.now()),
		"csv":      buf.String(),
	}, nil
}
