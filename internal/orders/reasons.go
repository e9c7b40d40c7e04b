package orders

const (
	ReasonOutOfStock          = "Out of stock"
	ReasonDeliveryUnavailable = "Delivery not available in this area"
	ReasonTechnicalIssue      = "Technical issue"
	ReasonHighVolume          = "High order volume"
	ReasonOther               = "Other"
)

var rejectReasons = []string{
	ReasonOutOfStock,
	ReasonDeliveryUnavailable,
	ReasonTechnicalIssue,
	ReasonHighVolume,
	ReasonOther,
}

func RejectReasons() []string { return append([]string(nil), rejectReasons...) }

func ValidRejectReason(r string) bool {
	for _, x := range rejectReasons {
		if x == r {
			return true
		}
	}
	return false
}
