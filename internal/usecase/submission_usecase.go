package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"skill-intake/internal/domain/submission"
	"skill-intake/internal/repository"

	"go.uber.org/zap"
)

type SubmitOutcome int

const (
	OutcomeCreated SubmitOutcome = iota + 1
	OutcomeMerged
)

func (o SubmitOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeMerged:
		return "merged"
	default:
		return "unknown"
	}
}

type SubmitResult struct {
	Outcome    SubmitOutcome
	Submission submission.Submission
	// AddedSkills were attached by this call. On create it equals
	// Submission.Skills.
	AddedSkills []string
}

// SubmissionNotifier is told about every committed create or merge.
type SubmissionNotifier interface {
	NotifySubmission(outcome string, s submission.Submission, added []string)
}

type SubmissionUsecase interface {
	Submit(ctx context.Context, in submission.Input) (SubmitResult, error)
	ListSubmissions(ctx context.Context, limit, offset int) (SubmissionPage, error)
}

// SubmissionPage carries the effective paging alongside the items.
type SubmissionPage struct {
	Items  []submission.Submission
	Limit  int
	Offset int
}

type SubmissionOptions struct {
	Cache        SubmissionCache
	CacheTTL     time.Duration
	Notifier     SubmissionNotifier
	DefaultLimit int
	Logger       *zap.Logger
}

type Submission struct {
	uow     repository.UnitOfWork
	queries repository.SubmissionQueryRepository

	cache        SubmissionCache
	cacheTTL     time.Duration
	notifier     SubmissionNotifier
	defaultLimit int
	logger       *zap.Logger
}

func NewSubmissionUsecase(uow repository.UnitOfWork, queries repository.SubmissionQueryRepository, opts SubmissionOptions) *Submission {
	u := &Submission{
		uow:          uow,
		queries:      queries,
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		notifier:     opts.Notifier,
		defaultLimit: opts.DefaultLimit,
		logger:       opts.Logger,
	}
	if u.defaultLimit <= 0 {
		u.defaultLimit = repository.DefaultListLimit
	}
	if u.logger == nil {
		u.logger = zap.NewNop()
	}
	return u
}

// Submit normalizes in and reconciles it against the stored user with the
// same email inside one transaction. Rejections roll the transaction back.
func (u *Submission) Submit(ctx context.Context, in submission.Input) (SubmitResult, error) {
	norm, err := in.Normalize()
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var res SubmitResult
	err = u.uow.Do(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		existing, err := loadExisting(ctx, repos, norm.Email)
		if err != nil {
			return err
		}

		decision := submission.Reconcile(existing, norm)
		var user submission.User
		switch decision.Kind {
		case submission.DecisionConflict:
			return ErrUserMismatch
		case submission.DecisionDuplicate:
			return ErrSubmissionExists
		case submission.DecisionCreate:
			user, err = repos.Users.Create(ctx, submission.User{
				Username: norm.Username,
				Email:    norm.Email,
				Location: norm.Location,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			res.Outcome = OutcomeCreated
		case submission.DecisionMerge:
			user = existing.User
			res.Outcome = OutcomeMerged
		default:
			return fmt.Errorf("unexpected reconcile decision %s", decision.Kind)
		}

		skillIDs, err := upsertSkills(ctx, repos.Skills, decision.NewSkills)
		if err != nil {
			return err
		}
		for _, name := range decision.NewSkills {
			if _, err := repos.UserSkills.Attach(ctx, user.ID, skillIDs[name]); err != nil {
				return fmt.Errorf("attach skill %q: %w", name, err)
			}
		}

		res.Submission = submission.Submission{User: user, Skills: decision.Skills}
		res.AddedSkills = decision.NewSkills
		return nil
	})
	if err != nil {
		return SubmitResult{}, u.submitError(norm.Email, err)
	}

	u.logger.Info("submission stored",
		zap.String("outcome", res.Outcome.String()),
		zap.Int64("user_id", res.Submission.User.ID),
		zap.Strings("added_skills", res.AddedSkills),
	)
	u.afterCommit(ctx, res)
	return res, nil
}

func loadExisting(ctx context.Context, repos repository.TxRepositories, email string) (*submission.Submission, error) {
	user, err := repos.Users.FindByEmailForUpdate(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	skills, err := repos.UserSkills.SkillNamesByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load user skills: %w", err)
	}
	return &submission.Submission{User: user, Skills: skills}, nil
}

// upsertSkills resolves names to IDs in sorted order. Concurrent
// submissions that share new skills then wait on each other's inserts in
// the same order and cannot deadlock.
func upsertSkills(ctx context.Context, repo repository.SkillRepository, names []string) (map[string]int64, error) {
	sorted := slices.Sorted(slices.Values(names))
	ids := make(map[string]int64, len(sorted))
	for _, name := range sorted {
		sk, err := repo.Upsert(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("upsert skill %q: %w", name, err)
		}
		ids[name] = sk.ID
	}
	return ids, nil
}

func (u *Submission) submitError(email string, err error) error {
	switch {
	case errors.Is(err, ErrUserMismatch), errors.Is(err, ErrSubmissionExists):
		u.logger.Info("submission rejected", zap.String("email", email), zap.Error(err))
		return err
	case isUniqueViolation(err), isForeignKeyViolation(err):
		u.logger.Info("submission raced with a concurrent write", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		u.logger.Error("submission failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

// afterCommit runs side effects that must not affect the stored result.
func (u *Submission) afterCommit(ctx context.Context, res SubmitResult) {
	if u.cache != nil {
		if _, err := u.cache.Incr(ctx, SubmissionsGenerationKey); err != nil {
			u.logger.Warn("submissions cache generation bump failed", zap.Error(err))
		}
		// Old generations are unreachable; drop them instead of waiting for
		// the TTL.
		if err := u.cache.DeleteByPattern(ctx, SubmissionsListCachePattern()); err != nil {
			u.logger.Warn("submissions cache invalidation failed", zap.Error(err))
		}
	}
	if u.notifier != nil {
		u.notifier.NotifySubmission(res.Outcome.String(), res.Submission, res.AddedSkills)
	}
}

// ListSubmissions returns users ordered by ID with their skills. A zero
// limit selects the configured default; limits above the maximum are
// clamped.
func (u *Submission) ListSubmissions(ctx context.Context, limit, offset int) (SubmissionPage, error) {
	if limit < 0 || offset < 0 {
		return SubmissionPage{}, ErrInvalidInput
	}
	if limit == 0 {
		limit = u.defaultLimit
	}
	if limit > repository.MaxListLimit {
		limit = repository.MaxListLimit
	}
	page := SubmissionPage{Limit: limit, Offset: offset}

	// The generation is read before the database so a write committed in
	// between lands in a newer generation than the page stored below.
	gen, cacheable := u.listGeneration(ctx)
	key := SubmissionsListCacheKey(gen, limit, offset)
	if cacheable {
		var cached []submission.Submission
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.logger.Warn("submissions cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			page.Items = cached
			return page, nil
		}
	}

	items, err := u.queries.ListSubmissions(ctx, limit, offset)
	if err != nil {
		u.logger.Error("list submissions failed", zap.Error(err))
		return SubmissionPage{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if cacheable {
		if err := u.cache.SetJSON(ctx, key, items, u.cacheTTL); err != nil {
			u.logger.Warn("submissions cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	page.Items = items
	return page, nil
}

// listGeneration reports the current cache generation. An unreadable
// generation disables caching for the call.
func (u *Submission) listGeneration(ctx context.Context) (int64, bool) {
	if u.cache == nil {
		return 0, false
	}
	var gen int64
	if _, err := u.cache.GetJSON(ctx, SubmissionsGenerationKey, &gen); err != nil {
		u.logger.Warn("submissions cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}
