package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curia-network/curia/internal/domain"
)

// pathID parses the {id} route segment.
func pathID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

// ─── Status ─────────────────────────────────────────────────────────────────

// handleStatus returns the epoch, aggregate counts, live parameters, and
// the most recent trace spans.
// GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make(map[string]int)
	for state, n := range s.engine.Verifier().CountByState() {
		items[state.String()] = n
	}
	proposals := make(map[string]int)
	for state, n := range s.engine.Governance().CountByState() {
		proposals[state.String()] = n
	}

	resp := map[string]interface{}{
		"status":  "ok",
		"epoch":   s.clock.Epoch(now),
		"genesis": s.clock.Genesis().Format(time.RFC3339),
		"params":  s.engine.Params(),
		"counts": map[string]interface{}{
			"subjects":           s.engine.Scores().SubjectCount(),
			"items":              items,
			"proposals":          proposals,
			"active_communities": s.engine.Communities().ActiveCount(),
			"assets":             s.engine.Assets().Count(),
		},
	}
	if tr := s.engine.Tracer(); tr != nil {
		resp["recent_spans"] = tr.Spans(10)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleParams returns the live governed parameters.
// GET /api/params
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Params())
}

// ─── Subjects & Scores ──────────────────────────────────────────────────────

// handleAdjust applies a manual score adjustment.
// POST /api/subjects/{subject}/adjust  (recorder)
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	var req struct {
		Delta int64  `json:"delta"`
		Cause string `json:"cause"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Cause == "" {
		writeError(w, http.StatusBadRequest, "cause is required")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	score := s.engine.Adjust(subject, req.Delta, domain.AdjustCause(req.Cause), now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": subject,
		"score":   score,
	})
}

// handleGetSubject returns a subject's decayed score alongside its
// collateral split and badge claims.
// GET /api/subjects/{subject}
func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := s.engine.Scores().Subject(subject, now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": sub,
		"free":    s.engine.Bonds().Free(subject, now),
		"bonded":  s.engine.Bonds().BondedTotal(subject, now),
		"locked":  s.engine.Bonds().Locked(subject),
		"badges":  s.engine.Badges().Claims(subject),
	})
}

// handleHistory returns a subject's recorded score adjustments.
// GET /api/subjects/{subject}/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	history := s.engine.Scores().History(subject)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject":     subject,
		"adjustments": history,
		"count":       len(history),
	})
}

// handleSubjectBonds returns a subject's active bonds and locked amount.
// GET /api/subjects/{subject}/bonds
func (s *Server) handleSubjectBonds(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": subject,
		"bonds":   s.engine.Bonds().Bonds(subject, now),
		"locked":  s.engine.Bonds().Locked(subject),
	})
}

// handleSubjectBadges returns a subject's badge claims.
// GET /api/subjects/{subject}/badges
func (s *Server) handleSubjectBadges(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": subject,
		"claims":  s.engine.Badges().Claims(subject),
	})
}

// handleLeaderboard returns the top subjects by decayed score.
// GET /api/leaderboard?n=
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid n")
			return
		}
		n = parsed
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"standings": s.engine.Scores().TopSubjects(n, now),
	})
}

// ─── Attestations ───────────────────────────────────────────────────────────

// handleGrantAttestation grants score-backed points to a subject. The
// recorder defaults to the authenticated caller.
// POST /api/attestations  (recorder)
func (s *Server) handleGrantAttestation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recorder string `json:"recorder"`
		Subject  string `json:"subject"`
		Points   uint64 `json:"points"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recorder == "" {
		req.Recorder = caller(r.Context())
	}
	if req.Recorder == "" || req.Subject == "" {
		writeError(w, http.StatusBadRequest, "recorder and subject are required")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.engine.GrantAttestation(req.Recorder, req.Subject, req.Points, req.Note, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleRevokeAttestation revokes a granted attestation and takes its
// points back.
// POST /api/attestations/{id}/revoke  (recorder)
func (s *Server) handleRevokeAttestation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attestation id")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.engine.RevokeAttestation(id, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ─── Items ──────────────────────────────────────────────────────────────────

// handleSubmitItem submits content for verification, escrowing the
// submission bond.
// POST /api/items
func (s *Server) handleSubmitItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contributor string `json:"contributor"`
		ContentRef  string `json:"content_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := s.engine.SubmitItem(req.Contributor, req.ContentRef, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleListItems lists items, optionally filtered by state.
// GET /api/items?state=
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.Item
	if v := r.URL.Query().Get("state"); v != "" {
		state, ok := domain.ParseItemState(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown item state")
			return
		}
		items = s.engine.Verifier().Items(state)
	} else {
		items = s.engine.Verifier().Items()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// handleGetItem returns an item with its outstanding commits.
// GET /api/items/{id}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := s.engine.Verifier().Item(id)
	if err != nil {
		writeFault(w, err)
		return
	}

	type commitView struct {
		Round       uint32    `json:"round"`
		Participant string    `json:"participant"`
		Hash        string    `json:"hash"`
		CommittedAt time.Time `json:"committed_at"`
	}
	var commits []commitView
	for _, c := range s.engine.Verifier().Commits(id) {
		commits = append(commits, commitView{
			Round:       c.Round,
			Participant: c.Participant,
			Hash:        c.HashHex(),
			CommittedAt: c.CommittedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item":    item,
		"commits": commits,
	})
}

// handleCommit records a sealed commitment for the item's current round.
// POST /api/items/{id}/commits
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req struct {
		Participant string `json:"participant"`
		Hash        string `json:"hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	digest, err := domain.ParseDigest(req.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hash: "+err.Error())
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.Commit(id, req.Participant, digest, now); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item_id":     id,
		"participant": req.Participant,
		"hash":        req.Hash,
	})
}

// handleReveal opens a commitment against its stored digest.
// POST /api/items/{id}/reveals
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req struct {
		Participant string `json:"participant"`
		Outcome     bool   `json:"outcome"`
		Secret      string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Reveal(id, req.Participant, req.Outcome, []byte(req.Secret), now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleChallenge freezes a pending item and opens the dispute proposal
// deciding it.
// POST /api/items/{id}/challenge
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req struct {
		Challenger string `json:"challenger"`
		Memo       string `json:"memo"`
		Deposit    uint64 `json:"deposit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.engine.Challenge(id, req.Challenger, req.Memo, req.Deposit, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleProposeMutation opens a content-change round on a verified item.
// POST /api/items/{id}/mutations
func (s *Server) handleProposeMutation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req struct {
		Proposer   string `json:"proposer"`
		ContentRef string `json:"content_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	round, err := s.engine.ProposeMutation(id, req.Proposer, req.ContentRef, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item_id": id,
		"round":   round,
	})
}

// ─── Governance ─────────────────────────────────────────────────────────────

// handlePropose opens a parameter-change proposal. Disputes open through
// the item challenge route instead.
// POST /api/proposals
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Proposer string `json:"proposer"`
		Param    string `json:"param"`
		Value    uint64 `json:"value"`
		Memo     string `json:"memo"`
		Deposit  uint64 `json:"deposit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	change := domain.ParamChange{Param: domain.ParamName(req.Param), Value: req.Value}
	p, err := s.engine.Propose(req.Proposer, change, req.Memo, req.Deposit, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleListProposals lists proposals, optionally filtered by state.
// GET /api/proposals?state=
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	var proposals []domain.Proposal
	if v := r.URL.Query().Get("state"); v != "" {
		state, ok := domain.ParseProposalState(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown proposal state")
			return
		}
		proposals = s.engine.Governance().Proposals(state)
	} else {
		proposals = s.engine.Governance().Proposals()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

// handleGetProposal returns a proposal with its cast votes.
// GET /api/proposals/{id}
func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	p, err := s.engine.Governance().Proposal(id)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"proposal": p,
		"votes":    s.engine.Governance().Votes(id),
	})
}

// handleVote casts a quadratic-weighted vote, escrowing the stake.
// POST /api/proposals/{id}/votes
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	var req struct {
		Voter   string `json:"voter"`
		Stake   uint64 `json:"stake"`
		Support bool   `json:"support"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := s.engine.Vote(id, req.Voter, req.Stake, req.Support, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleTally closes voting after the deadline and settles the outcome.
// POST /api/proposals/{id}/tally
func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.engine.Tally(id, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleExecute applies a passed proposal and releases its escrow.
// POST /api/proposals/{id}/execute
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.engine.Execute(id, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ─── Bonds ──────────────────────────────────────────────────────────────────

// handleBond earmarks free score toward an active community.
// POST /api/bonds
func (s *Server) handleBond(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
		Target  string `json:"target"`
		Amount  uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.engine.Bond(req.Subject, req.Target, req.Amount, now); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": req.Subject,
		"target":  req.Target,
		"bonded":  s.engine.Bonds().BondedTo(req.Subject, req.Target, now),
	})
}

// handleRequestUnbond moves bonded score into the timed unlock queue.
// POST /api/bonds/unbond
func (s *Server) handleRequestUnbond(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
		Target  string `json:"target"`
		Amount  uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	unbond, err := s.engine.RequestUnbond(req.Subject, req.Target, req.Amount, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unbond)
}

// handleClaimUnbonded releases an expired unbond request back to free.
// POST /api/bonds/claim
func (s *Server) handleClaimUnbonded(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject string `json:"subject"`
		Target  string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := s.engine.ClaimUnbonded(req.Subject, req.Target, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject": req.Subject,
		"target":  req.Target,
		"amount":  amount,
	})
}

// handleDueUnbonds lists unbond requests whose locks have expired.
// GET /api/bonds/due
func (s *Server) handleDueUnbonds(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	due := s.engine.Bonds().DueRequests(now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"due":   due,
		"count": len(due),
	})
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// handleListBadges returns the badge catalog.
// GET /api/badges
func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": s.engine.Badges().Rules(),
	})
}

// handleClaimBadge claims a badge for an eligible subject.
// POST /api/badges/{id}/claims
func (s *Server) handleClaimBadge(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")
	var req struct {
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := s.engine.ClaimBadge(req.Subject, ruleID, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// ─── Communities ────────────────────────────────────────────────────────────

// handleListCommunities returns all registered communities.
// GET /api/communities
func (s *Server) handleListCommunities(w http.ResponseWriter, r *http.Request) {
	communities := s.engine.Communities().Communities()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"communities": communities,
		"count":       len(communities),
	})
}

// handleCreateCommunity registers a new bond target.
// POST /api/communities  (operator)
func (s *Server) handleCreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.engine.CreateCommunity(req.Name, req.Description, now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleSuspendCommunity stops a community from accepting new bonds.
// POST /api/communities/{id}/suspend  (operator)
func (s *Server) handleSuspendCommunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.SuspendCommunity(id, now); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "state": "suspended"})
}

// handleDissolveCommunity permanently retires a community.
// POST /api/communities/{id}/dissolve  (operator)
func (s *Server) handleDissolveCommunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.DissolveCommunity(id, now); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "state": "dissolved"})
}

// ─── Credits & Admin ────────────────────────────────────────────────────────

// handleGetCredits returns an account's balance and entries.
// GET /api/credits/{account}
func (s *Server) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"balance": s.engine.Credits().Balance(account),
		"entries": s.engine.Credits().Entries(account),
	})
}

// handleSeedCredits mints operator credits into an account.
// POST /api/credits/seed  (operator)
func (s *Server) handleSeedCredits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
		Amount  uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Account == "" {
		writeError(w, http.StatusBadRequest, "account is required")
		return
	}
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance := s.engine.SeedCredits(req.Account, req.Amount, now)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account": req.Account,
		"balance": balance,
	})
}

// handleSnapshot persists a full-state snapshot to the journal.
// POST /api/admin/snapshot  (operator)
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.engine.Snapshot(now)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": id,
		"taken_at":    now.Format(time.RFC3339),
	})
}
