package services

import (
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
)

// NOTE: only decided applications count towards the rate
// rate = accepted / (accepted + rejected)

// AcceptanceRate returns the share of decided applications that were
// accepted, as a whole percentage.
func AcceptanceRate(s models.ReviewStats) (int, error) {
	classified := s.Accepted + s.InReview + s.Pending + s.Rejected
	if s.Total < classified {
		return 0, fmt.Errorf("cannot compute acceptance rate with total less than the classified applications: %d total < %d classified", s.Total, classified)
	}

	decided := s.Accepted + s.Rejected
	if decided == 0 {
		return 0, nil
	}

	return int(float64(s.Accepted) / float64(decided) * 100), nil
}
