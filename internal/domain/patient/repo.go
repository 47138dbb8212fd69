package patient

import "context"

// Repository exposes the three name-match strategies the resolver applies in
// order, plus direct lookup. All matches are case-insensitive substring
// matches; ordering of results follows the store's natural return order.
type Repository interface {
	GetByID(ctx context.Context, id int) (*Patient, error)
	// SearchFirstLast matches first name AND last name.
	SearchFirstLast(ctx context.Context, first, last string) ([]*Patient, error)
	// SearchAnyField matches first name OR last name.
	SearchAnyField(ctx context.Context, term string) ([]*Patient, error)
	// SearchFullName matches first name OR last name OR "first last".
	SearchFullName(ctx context.Context, term string) ([]*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
