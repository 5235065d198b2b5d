package service

import "errors"

// Kind classifies an error for the transport layer.
type Kind int

const (
	// KindInternal covers storage failures and anything unclassified.
	KindInternal Kind = iota
	// KindValidation covers malformed input and rejected business rules.
	KindValidation
	// KindNotFound covers missing coupons, products and carts.
	KindNotFound
)

// String returns the error code reported to API clients.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func notFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = validation("invalid request")

	// ErrMissingFields is returned when a coupon is created without a required field
	ErrMissingFields = validation("all fields are required")

	// ErrInvalidID is returned when an identifier is not a valid UUID
	ErrInvalidID = validation("invalid coupon id")

	// ErrInvalidProductID is returned when a product identifier is not a valid UUID
	ErrInvalidProductID = validation("invalid product id")

	// ErrInvalidWindow is returned when validFrom is not strictly before validUntil
	ErrInvalidWindow = validation("valid until must be later than valid from")

	// ErrInvalidDiscountValue is returned when the discount value is not positive,
	// has more than 2 decimal places, or exceeds 100 for a percentage coupon
	ErrInvalidDiscountValue = validation("invalid discount value")

	// ErrInvalidUsageLimit is returned when the usage limit is below 1 or does
	// not fit the stored integer column
	ErrInvalidUsageLimit = validation("invalid usage limit")

	// ErrCouponExists is returned when attempting to create a coupon that already exists
	ErrCouponExists = validation("coupon code already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found
	ErrCouponNotFound = notFound("coupon not found")

	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = notFound("product not found")

	// ErrCouponNotApplicable is returned when a coupon does not cover a product
	ErrCouponNotApplicable = validation("coupon is not applicable to this product")

	// ErrCouponOutOfWindow is returned by verification outside [validFrom, validUntil]
	ErrCouponOutOfWindow = validation("coupon is not valid in the current date range")

	// ErrCouponCodeRequired is returned when applying without a coupon code
	ErrCouponCodeRequired = validation("coupon code is required")

	// ErrCartNotFound is returned when the user has no cart
	ErrCartNotFound = notFound("cart not found")

	// ErrInvalidCouponCode is returned when applying a code that matches no coupon
	ErrInvalidCouponCode = validation("invalid coupon code")

	// ErrCouponExpired is returned when applying an inactive or ended coupon
	ErrCouponExpired = validation("coupon is no longer valid")
)
