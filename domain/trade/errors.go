package trade

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindUserRejected      ErrorKind = "user_rejected"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindExecutionReverted ErrorKind = "execution_reverted"
	KindUnknown           ErrorKind = "unknown"
)

var kindPatterns = []struct {
	kind     ErrorKind
	patterns []string
}{
	{kind: KindUserRejected, patterns: []string{"user rejected", "user denied", "action_rejected"}},
	{kind: KindInsufficientFunds, patterns: []string{"insufficient funds", "insufficient balance", "exceeds balance"}},
	{kind: KindExecutionReverted, patterns: []string{"execution reverted", "reverted", "revert"}},
}

var kindMessages = map[ErrorKind]string{
	KindUserRejected:      "Transaction was rejected.",
	KindInsufficientFunds: "Insufficient funds to complete the transaction.",
	KindExecutionReverted: "Transaction was reverted by the marketplace contract.",
	KindUnknown:           "Transaction failed, please try again.",
}

// TxError is a failed transaction with its classified kind
type TxError struct {
	Kind ErrorKind
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

func NewTxError(err error) *TxError {
	return &TxError{Kind: Classify(err), Err: err}
}

// Classify matches the failure message case-insensitively. A wrapped TxError
// keeps its kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.Kind
	}
	msg := strings.ToLower(err.Error())
	for _, p := range kindPatterns {
		for _, pattern := range p.patterns {
			if strings.Contains(msg, pattern) {
				return p.kind
			}
		}
	}
	return KindUnknown
}

// Message is the user facing text of a kind
func Message(kind ErrorKind) string {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return kindMessages[KindUnknown]
}
