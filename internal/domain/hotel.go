package domain

// HotelRecord is one inventory entry as normalized by the catalog loader.
// HotelName is the only stable matching key; numeric IDs are not guaranteed
// unique across reloads.
type HotelRecord struct {
	HotelID           string   `json:"hotelId,omitempty"`
	HotelName         string   `json:"hotelName"`
	City              string   `json:"city"`
	Locality          string   `json:"locality,omitempty"`
	Address           string   `json:"address,omitempty"`
	Latitude          float64  `json:"latitude,omitempty"`
	Longitude         float64  `json:"longitude,omitempty"`
	Total             float64  `json:"total"`
	Currency          string   `json:"currency,omitempty"`
	FareType          string   `json:"fareType,omitempty"`
	HotelRating       int      `json:"hotelRating"`
	TripAdvisorRating float64  `json:"tripAdvisorRating,omitempty"`
	TripAdvisorReview int      `json:"tripAdvisorReview,omitempty"`
	Facilities        []string `json:"facilities,omitempty"`
	PropertyType      string   `json:"propertyType,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Email             string   `json:"email,omitempty"`
	Special           string   `json:"special,omitempty"`
	Thumbnail         string   `json:"thumbNailUrl,omitempty"`

	// AIDescription is attached to a copy during response composition only.
	AIDescription string `json:"ai_description,omitempty"`
}

// ConversationTurn is one caller-supplied exchange. HotelResults carries a
// previously returned payload so follow-up questions can be answered from
// records already shown to the user.
type ConversationTurn struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	HotelResults []HotelRecord `json:"hotel_results,omitempty"`
}

func (t ConversationTurn) Valid() bool {
	return (t.Role == "user" || t.Role == "assistant") && t.Content != ""
}

type SortBy string

const (
	SortNone       SortBy = ""
	SortPriceAsc   SortBy = "price_asc"
	SortPriceDesc  SortBy = "price_desc"
	SortRatingAsc  SortBy = "rating_asc"
	SortRatingDesc SortBy = "rating_desc"
)

type FilterBy string

const (
	FilterNone   FilterBy = ""
	FilterBudget FilterBy = "budget"
	FilterLuxury FilterBy = "luxury"
)

type PriceFilterType string

const (
	PriceAround PriceFilterType = "around"
	PriceUnder  PriceFilterType = "under"
	PriceOver   PriceFilterType = "over"
)

// PriceFilter holds a parsed price constraint. Min <= Max whenever both are
// set; "around" derives them as Target x [0.8, 1.2].
type PriceFilter struct {
	Type   PriceFilterType
	Target float64
	Min    float64
	Max    float64
}

// RequirementSet is the per-request slot-extraction result.
type RequirementSet struct {
	Limit            int
	SortBy           SortBy
	FilterBy         FilterBy
	LocationSpecific string
	Price            *PriceFilter
}

// LocationContext is the resolver's output. SpecificLocation is only
// meaningful when City is non-empty. FromHistory marks a city recovered from
// earlier turns rather than the current message.
type LocationContext struct {
	City             string
	SpecificLocation string
	Reasoning        string
	FromHistory      bool
}

// ResponsePayload is the orchestrator's output and the handler's wire shape.
type ResponsePayload struct {
	Reply                string        `json:"reply"`
	HotelSearchTriggered bool          `json:"hotelSearchTriggered"`
	MatchedHotels        []HotelRecord `json:"matchedHotels"`
	Destination          string        `json:"destination,omitempty"`
	NeedsMoreInfo        bool          `json:"needsMoreInfo"`
}
