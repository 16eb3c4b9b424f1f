package game

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/models"
	"github.com/ohadf2015/boggle-new-sub010/internal/score"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

// SubmitOutcome classifies what happened to a submitted word. Every gate in
// the pipeline short-circuits to exactly one outcome.
type SubmitOutcome int

const (
	WordAccepted SubmitOutcome = iota
	WordAlreadyFound
	WordTooShort
	WordNotOnBoard
	WordNeedsValidation
	WordNotInProgress
	WordPlayerDisconnected
)

type SubmitResult struct {
	Outcome    SubmitOutcome
	Word       string
	Score      int
	ComboLevel int
}

// PendingWord is a submission that failed the dictionary check and awaits
// community or AI arbitration.
type PendingWord struct {
	Word         string
	SubmittedBy  string
	ComboLevel   int
	VotesValid   int
	VotesInvalid int
	Deadline     time.Time

	voters map[string]struct{}
	timer  *time.Timer
}

// SubmitWord runs the validation and scoring pipeline for one word.
func (r *Room) SubmitWord(username, rawWord string) (SubmitResult, error) {
	word := strings.ToLower(strings.TrimSpace(rawWord))
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[username]
	if !ok {
		return SubmitResult{}, ErrPlayerNotFound
	}
	res := SubmitResult{Word: word}

	if r.phase != PhaseInProgress {
		res.Outcome = WordNotInProgress
		return res, nil
	}
	if !p.Connected {
		res.Outcome = WordPlayerDisconnected
		return res, nil
	}
	if _, found := r.foundWords[username][word]; found {
		res.Outcome = WordAlreadyFound
		return res, nil
	}
	if len(word) < r.minWordLength {
		res.Outcome = WordTooShort
		r.breakComboLocked(p)
		return res, nil
	}
	if !r.grid.HasPath(word) {
		res.Outcome = WordNotOnBoard
		r.breakComboLocked(p)
		return res, nil
	}

	p.LastActivityAt = time.Now()
	r.touch()
	level := r.advanceComboLocked(p)
	res.ComboLevel = level

	if r.foundWords[username] == nil {
		r.foundWords[username] = make(map[string]*wordEntry)
	}

	if !r.dict.Contains(r.Language, word) {
		r.foundWords[username][word] = &wordEntry{pending: true}
		r.enqueuePendingLocked(word, username, level)
		res.Outcome = WordNeedsValidation
		return res, nil
	}

	s := score.CalculateWordScore(word, level)
	r.foundWords[username][word] = &wordEntry{score: s, valid: true}
	r.scores[username] += s
	res.Outcome = WordAccepted
	res.Score = s

	r.sendTo(username, EvtWordAccepted, map[string]any{
		"word":       word,
		"score":      s,
		"comboLevel": level,
		"multiplier": score.LegacyComboMultiplier(level),
	})
	r.broadcast(EvtUpdateLeaderboard, map[string]any{"leaderboard": r.leaderboard()})
	r.evaluateAchievementsLocked(username, word)
	return res, nil
}

// advanceComboLocked bumps the player's combo level if this word arrived
// inside the decaying window, otherwise resets it. The window is evaluated
// lazily on arrival, which is equivalent to cancel-and-reschedule decay
// timers without the timer bookkeeping.
func (r *Room) advanceComboLocked(p *Player) int {
	now := time.Now()
	if !p.lastWordAt.IsZero() && now.Sub(p.lastWordAt) <= score.ComboWindow(p.comboLevel) {
		p.comboLevel++
		if p.comboLevel > constants.ComboLevelCap {
			p.comboLevel = constants.ComboLevelCap
		}
	} else {
		p.comboLevel = 0
	}
	p.lastWordAt = now
	return p.comboLevel
}

// breakComboLocked resets the streak after an invalid word. A resubmission of
// an already-found word does not count as invalid.
func (r *Room) breakComboLocked(p *Player) {
	p.comboLevel = 0
	p.lastWordAt = time.Time{}
}

func (r *Room) enqueuePendingLocked(word, username string, level int) {
	pw := &PendingWord{
		Word:        word,
		SubmittedBy: username,
		ComboLevel:  level,
		Deadline:    time.Now().Add(r.cfg.VoteDeadline),
		voters:      make(map[string]struct{}),
	}
	pw.timer = time.AfterFunc(r.cfg.VoteDeadline, func() {
		r.resolvePendingByDeadline(word, username)
	})
	r.pending = append(r.pending, pw)

	r.broadcast(EvtWordNeedsValidation, map[string]any{
		"word":     word,
		"username": username,
	})

	// Too few peers to reach a verdict: hand the word to the AI arbiter.
	voters := len(r.eligibleVotersLocked(username))
	if voters < constants.PendingVoteQuorum {
		go r.consultArbiter(word, username)
	}
}

func (r *Room) eligibleVotersLocked(submitter string) []*Player {
	return lo.Filter(lo.Values(r.players), func(p *Player, _ int) bool {
		return p.Connected && !p.IsBot && p.Username != submitter
	})
}

// VoteWord records a community vote for a pending word. A vote is on the word
// itself: when several players submitted the same unlisted word, every
// submitter's copy receives it, so all copies resolve consistently. Votes are
// owned by the word, not the voter; a voter disconnecting does not retract
// its vote.
func (r *Room) VoteWord(voter, rawWord string, valid bool) error {
	word := strings.ToLower(strings.TrimSpace(rawWord))
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pw := range r.pendingCopiesLocked(word) {
		if voter == pw.SubmittedBy {
			continue
		}
		if _, voted := pw.voters[voter]; voted {
			continue
		}
		pw.voters[voter] = struct{}{}
		if valid {
			pw.VotesValid++
		} else {
			pw.VotesInvalid++
		}
	}

	for _, pw := range r.pendingCopiesLocked(word) {
		threshold := len(r.eligibleVotersLocked(pw.SubmittedBy))/2 + 1
		switch {
		case pw.VotesValid >= threshold:
			r.resolvePendingLocked(pw, true)
		case pw.VotesInvalid >= threshold:
			r.resolvePendingLocked(pw, false)
		}
	}
	return nil
}

func (r *Room) findPendingLocked(word, submitter string) *PendingWord {
	for _, pw := range r.pending {
		if pw.Word == word && pw.SubmittedBy == submitter {
			return pw
		}
	}
	return nil
}

func (r *Room) pendingCopiesLocked(word string) []*PendingWord {
	return lo.Filter(r.pending, func(pw *PendingWord, _ int) bool { return pw.Word == word })
}

func (r *Room) resolvePendingByDeadline(word, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pw := r.findPendingLocked(word, username)
	if pw == nil {
		return
	}
	// Majority of cast votes; no quorum or a tie defaults to rejection.
	r.resolvePendingLocked(pw, pw.VotesValid > pw.VotesInvalid)
}

func (r *Room) consultArbiter(word, username string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.VoteDeadline)
	defer cancel()
	verdict, err := r.arbiter.Verdict(ctx, r.Language, word)
	if err != nil {
		util.LogWarn("Arbiter verdict for %q failed: %v", word, err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	pw := r.findPendingLocked(word, username)
	if pw == nil {
		return
	}
	r.resolvePendingLocked(pw, verdict)
}

// resolvePendingLocked retires a pending word: scores it retroactively when
// valid, discards it otherwise, and broadcasts the update. Once the last
// pending word of a validating round resolves, the round completes.
func (r *Room) resolvePendingLocked(pw *PendingWord, valid bool) {
	if pw.timer != nil {
		pw.timer.Stop()
	}
	r.pending = lo.Without(r.pending, pw)

	entry := r.foundWords[pw.SubmittedBy][pw.Word]
	if entry == nil {
		return
	}
	if valid {
		s := score.CalculateWordScore(pw.Word, pw.ComboLevel)
		entry.pending = false
		entry.valid = true
		entry.score = s
		r.scores[pw.SubmittedBy] += s
		r.broadcast(EvtWordBecameValid, map[string]any{
			"word":     pw.Word,
			"username": pw.SubmittedBy,
			"score":    s,
		})
		r.broadcast(EvtUpdateLeaderboard, map[string]any{"leaderboard": r.leaderboard()})
	} else {
		delete(r.foundWords[pw.SubmittedBy], pw.Word)
		r.sendTo(pw.SubmittedBy, EvtWordRejected, map[string]any{
			"word":   pw.Word,
			"reason": "rejectedByVote",
		})
	}

	if r.phase == PhaseValidating && len(r.pending) == 0 {
		if err := r.completeRoundLocked(EventValidationComplete); err != nil {
			util.LogWarn("Room %s failed to complete validation: %v", r.Code, err)
		}
	}
}

// arbitrateDuplicatesLocked reverses the score of every word found by more
// than one player and builds the results payload.
func (r *Room) arbitrateDuplicatesLocked() []models.WordResult {
	holders := make(map[string][]string)
	for username, words := range r.foundWords {
		for w, entry := range words {
			if entry.valid {
				holders[w] = append(holders[w], username)
			}
		}
	}

	var results []models.WordResult
	for w, users := range holders {
		dup := len(users) > 1
		for _, username := range users {
			entry := r.foundWords[username][w]
			if dup && !entry.duplicate {
				r.scores[username] -= entry.score
				entry.score = 0
				entry.duplicate = true
			}
			results = append(results, models.WordResult{
				Word:        w,
				Username:    username,
				Score:       entry.score,
				IsDuplicate: entry.duplicate,
				IsValid:     true,
			})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Word != results[j].Word {
			return results[i].Word < results[j].Word
		}
		return results[i].Username < results[j].Username
	})
	return results
}

// Achievement milestones checked after each accepted word.
func (r *Room) evaluateAchievementsLocked(username, word string) {
	var unlocked []models.Achievement
	if len(r.foundWords[username]) == 1 {
		unlocked = append(unlocked, models.Achievement{ID: "first_word", Title: "First Find"})
	}
	if len(word) >= 6 {
		unlocked = append(unlocked, models.Achievement{ID: "word_smith", Title: "Wordsmith"})
	}
	total := r.scores[username]
	prev := total - r.foundWords[username][word].score
	for _, milestone := range []struct {
		at int
		id string
	}{{25, "score_25"}, {50, "score_50"}} {
		if prev < milestone.at && total >= milestone.at {
			unlocked = append(unlocked, models.Achievement{ID: milestone.id, Title: "Score Milestone"})
		}
	}
	if len(unlocked) > 0 {
		r.sendTo(username, EvtAchievement, map[string]any{"achievements": unlocked})
	}
}
