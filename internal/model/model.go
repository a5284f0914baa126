package model

// Shapes mirror the records of the external collection store. Dates travel
// as strings the way the store serializes them: plain `YYYY-MM-DD` for day
// fields, RFC3339 for timestamps.

type ItemStatus string

const (
	StatusInStock     ItemStatus = "instock"
	StatusOutOfStock  ItemStatus = "outofstock"
	StatusReserved    ItemStatus = "reserved"
	StatusOnBackorder ItemStatus = "onbackorder"
	StatusLost        ItemStatus = "lost"
	StatusRepairing   ItemStatus = "repairing"
	StatusForSale     ItemStatus = "forsale"
	StatusDeleted     ItemStatus = "deleted"
)

type Item struct {
	ID       string     `json:"id"`
	IID      int        `json:"iid"`
	Name     string     `json:"name"`
	Brand    string     `json:"brand,omitempty"`
	Model    string     `json:"model,omitempty"`
	Category []string   `json:"category,omitempty"`
	Synonyms []string   `json:"synonyms,omitempty"`
	Deposit  float64    `json:"deposit"`
	Copies   int        `json:"copies"`
	Status   ItemStatus `json:"status"`
}

type Customer struct {
	ID           string `json:"id"`
	IID          int    `json:"iid"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Street       string `json:"street,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	RegisteredOn string `json:"registered_on"`
	Newsletter   bool   `json:"newsletter"`
}

// Rental is an item (or several) currently lent out. It is active while
// ReturnedOn is empty.
type Rental struct {
	ID              string         `json:"id"`
	Customer        string         `json:"customer"`
	Items           []string       `json:"items"`
	RequestedCopies map[string]int `json:"requested_copies,omitempty"`
	Deposit         float64        `json:"deposit"`
	RentedOn        string         `json:"rented_on"`
	ExpectedOn      string         `json:"expected_on"`
	ReturnedOn      string         `json:"returned_on,omitempty"`
}

func (r Rental) Active() bool {
	return r.ReturnedOn == ""
}

type Reservation struct {
	ID            string   `json:"id"`
	CustomerIID   *string  `json:"customer_iid"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	CustomerEmail *string  `json:"customer_email"`
	IsNewCustomer bool     `json:"is_new_customer"`
	Comments      *string  `json:"comments"`
	Done          bool     `json:"done"`
	Items         []string `json:"items"`
	Pickup        string   `json:"pickup"`
	OnPremises    bool     `json:"on_premises"`
	OTP           string   `json:"otp,omitempty"`
}

// ReservationExpanded carries the item records referenced by a reservation,
// resolved via the store's expand parameter.
type ReservationExpanded struct {
	Reservation
	Expand struct {
		Items []Item `json:"items"`
	} `json:"expand"`
}
