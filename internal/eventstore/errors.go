package eventstore

import "git.home.luguber.info/inful/sitedeploy/internal/errors"

// Sentinel errors for event store operations, matched with errors.Is.
var (
	ErrDatabaseOpenFailed     = errors.StorageError("could not open run history database").Build()
	ErrInitializeSchemaFailed = errors.StorageError("failed to initialize run history schema").Build()
	ErrEventAppendFailed      = errors.StorageError("failed to append event to store").Build()
	ErrEventQueryFailed       = errors.StorageError("failed to query events from store").Build()
	ErrMarshalPayloadFailed   = errors.StorageError("failed to marshal event payload").Build()
)

func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
