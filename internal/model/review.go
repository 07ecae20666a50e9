package model

import (
	"math"
	"time"
)

// Review closes out one completed booking.  BookingID is unique.
type Review struct {
	ID             uint64    // reviews.id
	CustomerID     uint64    // reviews.customer_id
	ProfessionalID uint64    // reviews.professional_id
	ServiceID      uint64    // reviews.service_id
	BookingID      uint64    // reviews.booking_id
	Rating         int       // reviews.rating (1..5)
	Comment        string    // reviews.comment
	CreatedAt      time.Time // reviews.created_at
}

// ReviewRecord is a review joined with display names.  ServiceName is nil
// when the service has since been deleted.
type ReviewRecord struct {
	Review
	CustomerName string
	ServiceName  *string
}

const (
	MinRating = 1
	MaxRating = 5
)

// RatingSummary folds ratings into a count and a sum.  The mean is derived
// on demand so summaries from different sources can be merged.
type RatingSummary struct {
	Count int
	Sum   int
}

// Add folds one rating into the summary.
func (s RatingSummary) Add(rating int) RatingSummary {
	return RatingSummary{Count: s.Count + 1, Sum: s.Sum + rating}
}

// Merge combines two summaries.
func (s RatingSummary) Merge(o RatingSummary) RatingSummary {
	return RatingSummary{Count: s.Count + o.Count, Sum: s.Sum + o.Sum}
}

// Average is the arithmetic mean, or 0 when there are no ratings.
func (s RatingSummary) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// Rounded is Average rounded to one decimal place for display.
func (s RatingSummary) Rounded() float64 {
	return math.Round(s.Average()*10) / 10
}

// Summarize folds a list of ratings.
func Summarize(ratings []int) RatingSummary {
	var s RatingSummary
	for _, r := range ratings {
		s = s.Add(r)
	}
	return s
}
