package orders

type Status string

const (
	StatusPlaced            Status = "placed"
	StatusAccepted          Status = "accepted"
	StatusPacked            Status = "packed"
	StatusPackedWaiting     Status = "packed_waiting"
	StatusOutForDelivery    Status = "out_for_delivery"
	StatusDelivered         Status = "delivered"
	StatusReturned          Status = "returned"
	StatusVerifiedReturn    Status = "verified_return"
	StatusReturnAccepted    Status = "return_accepted"
	StatusPartiallyReturned Status = "partially_returned"
	StatusCancelled         Status = "cancelled"
	StatusComplete          Status = "complete"
	StatusTryPhase          Status = "try_phase"
)

// Transisi yang dijalankan dari sisi merchant. Sisanya datang dari backend lewat orderUpdate.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:         {StatusAccepted: true},
	StatusAccepted:       {StatusPacked: true, StatusPackedWaiting: true},
	StatusReturned:       {StatusVerifiedReturn: true},
	StatusVerifiedReturn: {StatusReturnAccepted: true},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

var actions = map[Status][]Action{
	StatusPlaced:         {ActionAccept, ActionReject},
	StatusAccepted:       {ActionPack},
	StatusReturned:       {ActionVerifyReturn},
	StatusVerifiedReturn: {ActionAcceptReturn},
}

// Actions returns the buttons an operator may press for an order in status s.
func Actions(s Status) []Action {
	a := actions[s]
	if len(a) == 0 {
		return []Action{}
	}
	return append([]Action(nil), a...)
}

func Allows(s Status, a Action) bool {
	for _, x := range actions[s] {
		if x == a {
			return true
		}
	}
	return false
}

// Pending: masih nunggu keputusan accept/reject.
func (s Status) Pending() bool { return s == StatusPlaced || s == "" }

func (s Status) String() string { return string(s) }
