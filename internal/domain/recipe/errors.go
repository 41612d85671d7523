package recipe

import "errors"

// Domain errors for recipe operations

var (
	ErrTitleRequired     = errors.New("recipe title is required")
	ErrSourceURLRequired = errors.New("url sources must carry a source url")
	ErrInvalidSource     = errors.New("unknown recipe source type")
	ErrEmptyUpdate       = errors.New("update carries no fields")
	ErrNoImage           = errors.New("recipe has no image")
	ErrNotPublic         = errors.New("recipe is not public")
	ErrNotFound          = errors.New("recipe not found")
	ErrNotOwner          = errors.New("only the recipe owner can perform this action")
)
