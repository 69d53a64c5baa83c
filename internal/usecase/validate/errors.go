package validate

import "errors"

// ErrMissingCollaborator is returned by Service.Check when the service was
// built without a fetcher or schema.
var ErrMissingCollaborator = errors.New("validate: fetcher and schema are required")
