// internal/app/system/txn/txn.go
// Package txn runs a group of Mongo writes as one transaction when the
// deployment allows it. A balance adjustment touches the profile and the
// adjustments ledger; on a standalone server the writes run in sequence.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func does the writes. ctx is a session context inside a transaction and
// the caller's context otherwise, so every store call must use it.
type Func func(ctx context.Context) error

// Run calls fn inside a transaction on db's client. When the server cannot
// start a session or refuses transactions, fn runs once without one.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	if log == nil {
		log = zap.NewNop()
	}

	sess, err := db.Client().StartSession()
	if err != nil {
		log.Warn("no session available, writing without a transaction", zap.Error(err))
		return fn(ctx)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	switch {
	case err == nil:
		return nil
	case IsNotSupported(err):
		log.Warn("transactions unsupported, writing without one", zap.Error(err))
		return fn(ctx)
	default:
		return err
	}
}

// Server error codes meaning "no multi-document transactions here".
var unsupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: not a replica set member or mongos
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// Exact messages from servers that report the condition without a code.
var unsupportedMessages = []string{
	"transaction numbers are only allowed on a replica set member or mongos",
	"transactions are not supported",
}

// IsNotSupported reports whether err says the deployment lacks transaction
// support rather than that the writes themselves failed. An error labeled as
// part of a transaction that did start is never unsupported, since retrying
// it without one could apply the writes twice.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) &&
		(se.HasErrorLabel("UnknownTransactionCommitResult") || se.HasErrorLabel("TransientTransactionError")) {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && unsupportedCodes[cmdErr.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range unsupportedMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
