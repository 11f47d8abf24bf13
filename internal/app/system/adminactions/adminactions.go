// internal/app/system/adminactions/adminactions.go
// Package adminactions implements the operator actions that change a
// profile: balance adjustment, block toggle and password reset. They are
// reached through one narrow entry point, Invoker.Invoke, so the HTTP layer
// only validates forms and maps errors.
package adminactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	adjustmentstore "github.com/dalemusser/stratareview/internal/app/store/adjustments"
	"github.com/dalemusser/stratareview/internal/app/store/audit"
	profilestore "github.com/dalemusser/stratareview/internal/app/store/profiles"
	"github.com/dalemusser/stratareview/internal/app/system/auditlog"
	"github.com/dalemusser/stratareview/internal/app/system/auth"
	"github.com/dalemusser/stratareview/internal/app/system/authutil"
	"github.com/dalemusser/stratareview/internal/app/system/events"
	"github.com/dalemusser/stratareview/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratareview/internal/app/system/normalize"
	"github.com/dalemusser/stratareview/internal/app/system/txn"
	"github.com/dalemusser/stratareview/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Action names.
const (
	ActionAdjustBalance = "adjust_balance"
	ActionToggleBlock   = "toggle_block"
	ActionResetPassword = "reset_password"
)

// Parameter keys.
const (
	ParamTargetUserID = "target_user_id"
	ParamAmount       = "amount"
	ParamReason       = "reason"
	ParamBlocked      = "blocked"
)

// DefaultTempPassword is what reset_password sets when no other value is
// configured.
const DefaultTempPassword = "temp123"

// MaxReasonLength bounds the stored adjustment reason.
const MaxReasonLength = 500

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrForbidden      = errors.New("operator access required")
	ErrInvalidTarget  = errors.New("invalid target user id")
	ErrInvalidAmount  = errors.New("amount must be a non-zero number")
	ErrReasonRequired = errors.New("a reason is required")
	ErrReasonTooLong  = errors.New("reason is too long")
	ErrInvalidBlocked = errors.New("blocked must be true or false")
	ErrSelfAction     = errors.New("operators cannot block themselves")
	ErrTargetNotFound = errors.New("user not found")
)

// Params are the string-valued action parameters, as they arrive from a form.
type Params map[string]string

// Result is what a successful action reports back.
type Result struct {
	Action       string
	TargetID     primitive.ObjectID
	NewBalance   *float64
	Blocked      *bool
	TempPassword string
}

// Invoker runs a named operator action.
type Invoker interface {
	Invoke(ctx context.Context, actor auth.Principal, action string, params Params) (Result, error)
}

// CacheInvalidator drops derived data that an action makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service is the Mongo-backed Invoker.
type Service struct {
	db           *mongo.Database
	profiles     *profilestore.Store
	adjustments  *adjustmentstore.Store
	audit        *auditlog.Logger
	publisher    events.Publisher
	cache        CacheInvalidator
	tempPassword string
	log          *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAudit records every action in the audit log.
func WithAudit(l *auditlog.Logger) Option { return func(s *Service) { s.audit = l } }

// WithPublisher publishes every action as an event.
func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithCache invalidates c after every action.
func WithCache(c CacheInvalidator) Option { return func(s *Service) { s.cache = c } }

// WithTempPassword overrides the password reset_password sets.
func WithTempPassword(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.tempPassword = p
		}
	}
}

// New builds a Service on db.
func New(db *mongo.Database, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		db:           db,
		profiles:     profilestore.New(db),
		adjustments:  adjustmentstore.New(db),
		publisher:    events.Nop{},
		tempPassword: DefaultTempPassword,
		log:          log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Invoke validates the principal and parameters and runs the action.
func (s *Service) Invoke(ctx context.Context, actor auth.Principal, action string, params Params) (Result, error) {
	if !actor.Valid() || !actor.IsAdmin {
		return Result{}, ErrForbidden
	}

	var (
		res Result
		err error
	)
	switch action {
	case ActionAdjustBalance:
		var in AdjustInput
		if in, err = ParseAdjust(params); err != nil {
			return Result{}, err
		}
		res, err = s.adjustBalance(ctx, actor, in)
	case ActionToggleBlock:
		var in BlockInput
		if in, err = ParseBlock(params); err != nil {
			return Result{}, err
		}
		if in.Target == actor.ID && in.Blocked {
			return Result{}, ErrSelfAction
		}
		res, err = s.toggleBlock(ctx, actor, in)
	case ActionResetPassword:
		var target primitive.ObjectID
		if target, err = parseTarget(params); err != nil {
			return Result{}, err
		}
		res, err = s.resetPassword(ctx, actor, target)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		return Result{}, err
	}

	if s.cache != nil {
		if cerr := s.cache.Invalidate(ctx); cerr != nil {
			s.log.Warn("dashboard cache invalidation failed", zap.String("action", action), zap.Error(cerr))
		}
	}
	return res, nil
}

// AdjustInput is a parsed adjust_balance request.
type AdjustInput struct {
	Target primitive.ObjectID
	Amount decimal.Decimal
	Reason string
}

// ParseAdjust validates adjust_balance parameters.
func ParseAdjust(p Params) (AdjustInput, error) {
	target, err := parseTarget(p)
	if err != nil {
		return AdjustInput{}, err
	}
	raw := strings.TrimSpace(p[ParamAmount])
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return AdjustInput{}, ErrInvalidAmount
	}
	amount = amount.Round(2)
	if amount.IsZero() {
		return AdjustInput{}, ErrInvalidAmount
	}
	reason := normalize.Reason(htmlsanitize.PlainText(p[ParamReason]))
	if reason == "" {
		return AdjustInput{}, ErrReasonRequired
	}
	if len([]rune(reason)) > MaxReasonLength {
		return AdjustInput{}, ErrReasonTooLong
	}
	return AdjustInput{Target: target, Amount: amount, Reason: reason}, nil
}

// BlockInput is a parsed toggle_block request.
type BlockInput struct {
	Target  primitive.ObjectID
	Blocked bool
}

// ParseBlock validates toggle_block parameters.
func ParseBlock(p Params) (BlockInput, error) {
	target, err := parseTarget(p)
	if err != nil {
		return BlockInput{}, err
	}
	blocked, err := strconv.ParseBool(strings.TrimSpace(p[ParamBlocked]))
	if err != nil {
		return BlockInput{}, ErrInvalidBlocked
	}
	return BlockInput{Target: target, Blocked: blocked}, nil
}

func parseTarget(p Params) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(p[ParamTargetUserID]))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidTarget
	}
	return oid, nil
}

func (s *Service) adjustBalance(ctx context.Context, actor auth.Principal, in AdjustInput) (Result, error) {
	var newBalance float64

	err := txn.Run(ctx, s.db, s.log, func(tx context.Context) error {
		p, err := s.profiles.GetByID(tx, in.Target)
		if err != nil {
			return err
		}
		previous := decimal.NewFromFloat(p.BalanceValue())
		next := previous.Add(in.Amount).Round(2)
		newBalance = next.InexactFloat64()

		if err := s.profiles.SetBalance(tx, in.Target, newBalance); err != nil {
			return err
		}
		_, err = s.adjustments.Insert(tx, models.BalanceAdjustment{
			UserID:          in.Target,
			ActorID:         actor.ID,
			Amount:          in.Amount.InexactFloat64(),
			PreviousBalance: previous.InexactFloat64(),
			NewBalance:      newBalance,
			Reason:          in.Reason,
		})
		return err
	})
	if err != nil {
		return Result{}, s.mapStoreErr("adjust balance", err)
	}

	details := map[string]string{
		"amount":      in.Amount.StringFixed(2),
		"new_balance": decimal.NewFromFloat(newBalance).StringFixed(2),
		"reason":      in.Reason,
	}
	s.record(ctx, actor, in.Target, audit.EventBalanceAdjusted, events.TypeBalanceAdjusted, details)

	return Result{Action: ActionAdjustBalance, TargetID: in.Target, NewBalance: &newBalance}, nil
}

func (s *Service) toggleBlock(ctx context.Context, actor auth.Principal, in BlockInput) (Result, error) {
	if err := s.profiles.SetBlocked(ctx, in.Target, in.Blocked); err != nil {
		return Result{}, s.mapStoreErr("toggle block", err)
	}

	eventType := audit.EventUserUnblocked
	if in.Blocked {
		eventType = audit.EventUserBlocked
	}
	s.record(ctx, actor, in.Target, eventType, events.TypeBlockToggled,
		map[string]string{"blocked": strconv.FormatBool(in.Blocked)})

	blocked := in.Blocked
	return Result{Action: ActionToggleBlock, TargetID: in.Target, Blocked: &blocked}, nil
}

func (s *Service) resetPassword(ctx context.Context, actor auth.Principal, target primitive.ObjectID) (Result, error) {
	hash, err := authutil.HashPassword(s.tempPassword)
	if err != nil {
		return Result{}, fmt.Errorf("hash temporary password: %w", err)
	}
	if err := s.profiles.SetPassword(ctx, target, hash, true); err != nil {
		return Result{}, s.mapStoreErr("reset password", err)
	}

	s.record(ctx, actor, target, audit.EventPasswordReset, events.TypePasswordReset, nil)

	return Result{Action: ActionResetPassword, TargetID: target, TempPassword: s.tempPassword}, nil
}

func (s *Service) mapStoreErr(op string, err error) error {
	if errors.Is(err, profilestore.ErrNotFound) {
		return ErrTargetNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// record writes the audit entry and publishes the event. Neither failure
// undoes the action; both are logged.
func (s *Service) record(ctx context.Context, actor auth.Principal, target primitive.ObjectID, auditType, eventType string, details map[string]string) {
	s.audit.AdminAction(ctx, nil, actor.ID, target, auditType, details)

	e := events.NewEvent(eventType, actor.ID.Hex(), target.Hex(), details)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("admin action event not published",
			zap.String("type", eventType),
			zap.String("target_id", target.Hex()),
			zap.Error(err))
	}
}
