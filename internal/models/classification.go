package models

// Classification is where an application stands in review. Every application
// is in exactly one of the four states; the zero value means "unset" and is
// never produced by Classify.
type Classification int

const (
	Accepted Classification = iota + 1
	InReview
	Pending
	Rejected
)

// Any is a match target rather than a state: it matches every
// classification.
const Any Classification = -1

// Classifications lists the four states in display order.
var Classifications = []Classification{Accepted, InReview, Pending, Rejected}

// Classify derives the review state from the decision and whether a reviewer
// has picked the application up. A decision always wins over the reviewer.
func Classify(approved *bool, hasReviewer bool) Classification {
	switch {
	case approved != nil && *approved:
		return Accepted
	case approved != nil:
		return Rejected
	case hasReviewer:
		return InReview
	default:
		return Pending
	}
}

func (c Classification) String() string {
	switch c {
	case Accepted:
		return "Accepted"
	case InReview:
		return "In Review"
	case Pending:
		return "Pending"
	case Rejected:
		return "Rejected"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the four review states.
func (c Classification) Valid() bool {
	return c >= Accepted && c <= Rejected
}

// Matches reports whether state satisfies c used as a match target.
func (c Classification) Matches(state Classification) bool {
	if c == Any {
		return state.Valid()
	}
	return c.Valid() && c == state
}
