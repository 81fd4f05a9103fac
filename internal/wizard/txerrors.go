package wizard

import (
	"errors"
	"strings"
)

const unknownError = "An unknown error occurred"

// ContractRevertedError is a call the contract reverted. Reason is the
// revert string when the contract supplied one; ErrorName is the decoded
// custom error otherwise.
type ContractRevertedError struct {
	Reason    string
	ErrorName string
}

func (e *ContractRevertedError) Error() string {
	if e.Reason != "" {
		return "execution reverted with the following reason: " + e.Reason
	}
	if e.ErrorName != "" {
		return "execution reverted: " + e.ErrorName
	}
	return "execution reverted"
}

type UserRejectedError struct{}

func (*UserRejectedError) Error() string { return "user rejected the request" }

// ContractExecutionError wraps a failure raised while executing the call.
type ContractExecutionError struct {
	ShortMessage string
	Cause        error
}

func (e *ContractExecutionError) Error() string {
	if e.Cause != nil {
		return "contract execution failed: " + e.Cause.Error()
	}
	return "contract execution failed: " + e.ShortMessage
}

func (e *ContractExecutionError) Unwrap() error { return e.Cause }

type InsufficientFundsError struct{}

func (*InsufficientFundsError) Error() string { return "insufficient funds for gas * price + value" }

// ClassifyTxError maps a claim transaction failure onto the message shown
// to the user. The cause chain is walked from the outside in and the first
// known error type decides the message.
func ClassifyTxError(err error) Notification {
	n := Notification{Title: "Transaction Failed", Variant: VariantDestructive}
	n.Description = describeTxError(err)
	if n.Description == "" {
		n.Description = unknownError
	}
	return n
}

func describeTxError(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case *ContractRevertedError:
			if reason := strings.TrimSpace(v.Reason); reason != "" {
				return reason
			}
			return v.ErrorName
		case *UserRejectedError:
			return "User rejected the transaction"
		case *ContractExecutionError:
			return v.ShortMessage
		case *InsufficientFundsError:
			return "Insufficient funds"
		}
	}
	return unknownError
}
