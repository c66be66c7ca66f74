package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/metrics"
	"github.com/snapform/snapform-api/internal/models"
	"gorm.io/gorm"
)

// PostCommitHook runs after a response is durably committed. Hooks cannot
// affect the submission outcome.
type PostCommitHook func(ctx context.Context, form *models.Form, resp *models.Response)

// HookRunner fans committed responses out to hooks, each in its own
// goroutine.
type HookRunner struct {
	Timeout time.Duration

	mu    sync.RWMutex
	hooks []PostCommitHook
	wg    sync.WaitGroup
}

func (r *HookRunner) Add(hook PostCommitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Dispatch starts every hook and returns immediately. form and resp are
// copied so hooks never share memory with the caller.
func (r *HookRunner) Dispatch(ctx context.Context, form models.Form, resp models.Response) {
	r.mu.RLock()
	hooks := append([]PostCommitHook(nil), r.hooks...)
	r.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, hook := range hooks {
		r.wg.Add(1)
		go func(hook PostCommitHook, form models.Form, resp models.Response) {
			defer r.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					logging.WithFields(logrus.Fields{
						"form_id":     form.ID,
						"response_id": resp.ID,
					}).Errorf("post-commit hook panic: %v\n%s", p, debug.Stack())
				}
			}()

			hctx := base
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				hctx, cancel = context.WithTimeout(base, r.Timeout)
				defer cancel()
			}
			hook(hctx, &form, &resp)
		}(hook, form, resp)
	}
}

// Wait blocks until every dispatched hook has returned.
func (r *HookRunner) Wait() {
	r.wg.Wait()
}

// SubmissionMeta is request information stored alongside a response.
type SubmissionMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// SubmitResult is the outcome of SubmitResponse. Response is set only when
// the decision admitted the submission.
type SubmitResult struct {
	Decision Decision
	Response *models.Response
}

// SubmissionService is the public submission entry point.
type SubmissionService struct {
	DB        *gorm.DB
	Gate      *AdmissionGate
	Committer *ResponseCommitter
	Hooks     *HookRunner
}

// NewSubmissionService wires the store backed gate and committer.
func NewSubmissionService(db *gorm.DB, commitTimeout time.Duration, hooks *HookRunner) *SubmissionService {
	return &SubmissionService{
		DB:        db,
		Gate:      &AdmissionGate{Usage: &StoreUsageCounter{DB: db}},
		Committer: &ResponseCommitter{DB: db, Timeout: commitTimeout},
		Hooks:     hooks,
	}
}

// FindForm loads a form by id.
func FindForm(ctx context.Context, db *gorm.DB, formID uuid.UUID) (*models.Form, error) {
	var form models.Form
	err := db.WithContext(ctx).Where("id = ?", formID).First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// SubmitResponse admits and commits one public submission. Rejections are
// returned in the result with a nil error. Errors are ErrFormNotFound,
// ErrUsageUnavailable or ErrSubmissionFailed.
func (s *SubmissionService) SubmitResponse(ctx context.Context, formID uuid.UUID, payload Submission, meta SubmissionMeta) (SubmitResult, error) {
	log := logging.WithField("form_id", formID)

	form, err := FindForm(ctx, s.DB, formID)
	if err != nil {
		if errors.Is(err, ErrFormNotFound) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrUsageUnavailable, err)
	}

	tier, err := FindOwnerTier(ctx, s.DB, form.UserID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrUsageUnavailable, err)
	}

	decision, err := s.Gate.Evaluate(ctx, form, tier, payload)
	if err != nil {
		log.WithError(err).Warn("usage check failed, rejecting submission")
		return SubmitResult{}, err
	}
	if !decision.Admitted {
		metrics.SubmissionsRejected.WithLabelValues(string(decision.Code)).Inc()
		log.WithField("reason", decision.Code).Info("submission rejected")
		return SubmitResult{Decision: decision}, nil
	}

	rec := ResponseRecord{
		Email:     decision.Email,
		Data:      decision.Data,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if meta.Referrer != "" {
		ref := meta.Referrer
		rec.Referrer = &ref
	}

	resp, err := s.Committer.Commit(ctx, form.ID, rec)
	if errors.Is(err, ErrFormUnavailable) {
		// unpublished after admission
		decision = reject(RejectFormNotPublished, "This form is not accepting responses")
		metrics.SubmissionsRejected.WithLabelValues(string(decision.Code)).Inc()
		return SubmitResult{Decision: decision}, nil
	}
	if err != nil {
		metrics.CommitFailures.Inc()
		log.WithError(err).Error("response commit failed")
		return SubmitResult{}, err
	}

	metrics.SubmissionsAccepted.Inc()
	log.WithField("response_id", resp.ID).Debug("response committed")

	if s.Hooks != nil {
		form.ResponseCount++
		s.Hooks.Dispatch(ctx, *form, resp)
	}

	return SubmitResult{Decision: decision, Response: &resp}, nil
}
