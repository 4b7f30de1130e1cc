package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/utils/errutil"
)

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return goerr.Wrap(types.ErrValidation, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status":  "healthy",
		"message": "StyleMail API is running",
	})
}

type seedRequest struct {
	UserID  types.UserID `json:"user_id"`
	Samples []string     `json:"samples"`
}

func (s *Server) seedHandler(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	if err := s.uc.SeedStyle(r.Context(), req.UserID, req.Samples); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(w, map[string]string{"status": "ok"})
}

type generateRequest struct {
	UserID  types.UserID `json:"user_id"`
	Subject string       `json:"subject"`
	Prompt  string       `json:"prompt"`
}

type emailResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	artifact, err := s.uc.GeneratePlainEmail(r.Context(), req.UserID, req.Subject, req.Prompt)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(w, emailResponse{Subject: artifact.Subject, Body: artifact.Body})
}

type nudgeRequest struct {
	UserID     types.UserID     `json:"user_id"`
	Prompt     string           `json:"prompt"`
	Email      string           `json:"email"`
	Password   string           `json:"password" masq:"secret"`
	EmployeeID types.EmployeeID `json:"employee_id"`
}

// fetchRecords authenticates against the nudge provider and fetches
// the employee's records.
func (s *Server) fetchRecords(r *http.Request, req nudgeRequest) ([]model.NudgeRecord, error) {
	if s.nudgeClient == nil {
		return nil, goerr.New("nudge provider is not configured")
	}

	token, err := s.nudgeClient.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return s.nudgeClient.FetchNudges(r.Context(), token, req.EmployeeID)
}

func (s *Server) fetchNudgeDataHandler(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	records, err := s.fetchRecords(r, req)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(w, map[string]any{"data": records})
}

// nudgeFacts resolves the employee's nudge set. Credentials route the
// request through the external provider; without them the locally
// stored nudge rows are used instead.
func (s *Server) nudgeFacts(r *http.Request, req nudgeRequest) ([]model.NudgeFact, error) {
	if s.nudgeClient != nil && req.Email != "" {
		records, err := s.fetchRecords(r, req)
		if err != nil {
			return nil, err
		}
		return model.Facts(records), nil
	}

	return s.uc.LocalNudgeFacts(r.Context(), req.EmployeeID)
}

func (s *Server) nudgeEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	facts, err := s.nudgeFacts(r, req)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	artifact, err := s.uc.GenerateNudgeEmail(r.Context(), req.UserID, req.EmployeeID, req.Prompt, facts)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(w, emailResponse{Subject: artifact.Subject, Body: artifact.Body})
}

func (s *Server) nudgeSummaryHandler(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	facts, err := s.nudgeFacts(r, req)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	artifact, err := s.uc.GenerateNudgeSummary(r.Context(), req.EmployeeID, req.Prompt, facts)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}

	respondJSON(w, map[string]string{"summary": artifact.Summary})
}
