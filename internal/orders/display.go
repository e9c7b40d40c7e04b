package orders

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Display struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

var defaultDisplay = Display{Color: "gray", Icon: "help-circle"}

var displays = map[Status]Display{
	StatusPlaced:            {Color: "blue", Icon: "shopping-bag", Label: "New Order"},
	StatusAccepted:          {Color: "indigo", Icon: "check-circle", Label: "Accepted"},
	StatusPacked:            {Color: "purple", Icon: "package", Label: "Packed"},
	StatusPackedWaiting:     {Color: "violet", Icon: "clock", Label: "Packed, Awaiting Pickup"},
	StatusOutForDelivery:    {Color: "orange", Icon: "truck", Label: "Out for Delivery"},
	StatusDelivered:         {Color: "green", Icon: "home", Label: "Delivered"},
	StatusReturned:          {Color: "amber", Icon: "rotate-ccw", Label: "Returned"},
	StatusVerifiedReturn:    {Color: "yellow", Icon: "shield-check", Label: "Return Verified"},
	StatusReturnAccepted:    {Color: "teal", Icon: "check-square", Label: "Return Accepted"},
	StatusPartiallyReturned: {Color: "lime", Icon: "corner-up-left", Label: "Partially Returned"},
	StatusCancelled:         {Color: "red", Icon: "x-circle", Label: "Cancelled"},
	StatusComplete:          {Color: "emerald", Icon: "award", Label: "Complete"},
	StatusTryPhase:          {Color: "cyan", Icon: "shirt", Label: "Try & Buy"},
}

// DisplayFor never fails: unknown statuses get the neutral treatment.
func DisplayFor(s Status) Display {
	if d, ok := displays[s]; ok {
		return d
	}
	d := defaultDisplay
	d.Label = "Unknown"
	if s != "" {
		d.Label = cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
	}
	return d
}

// Known reports whether s has its own display treatment.
func Known(s Status) bool {
	_, ok := displays[s]
	return ok
}
