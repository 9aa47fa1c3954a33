package web

// Page identifies one step of the multi-page wizard. It is the state of the
// page-transition machine and is carried in the session between requests.
type Page string

const (
	Page1 Page = "page1"

	// Check-out flow
	PageSelectBoatToCheckout Page = "selectBoatToCheckout"
	PageWhoAreYou            Page = "whoAreYou"
	PageReasonForCheckout    Page = "reasonForCheckout"
	PageCheckedOut           Page = "checkedOut"

	// Check-in flow
	PageStartCheckIn      Page = "startCheckIn"
	PageRecordEngineHours Page = "recordEngineHours"
	PageAreThereDefects   Page = "areThereDefects"
	PageReportFault       Page = "reportFault"
	PageCheckInComplete   Page = "checkInComplete"
)

// Navigation actions.
const (
	ActionNext     = "next"
	ActionPrevious = "previous"
)

// The two transition graphs are simple chains. page1 is the shared initial
// state; checkedOut is terminal for check-out, while check-in loops back to
// page1.
var checkOutTransitions = map[Page]Page{
	Page1:                    PageSelectBoatToCheckout,
	PageSelectBoatToCheckout: PageWhoAreYou,
	PageWhoAreYou:            PageReasonForCheckout,
	PageReasonForCheckout:    PageCheckedOut,
}

var checkInTransitions = map[Page]Page{
	Page1:                 PageStartCheckIn,
	PageStartCheckIn:      PageRecordEngineHours,
	PageRecordEngineHours: PageAreThereDefects,
	PageAreThereDefects:   PageReportFault,
	PageReportFault:       PageCheckInComplete,
	PageCheckInComplete:   Page1,
}

func transitionsFor(checkIn bool) map[Page]Page {
	if checkIn {
		return checkInTransitions
	}
	return checkOutTransitions
}

// NextPage returns the page that follows current in the selected graph,
// falling back to Page1 when current has no entry.
func NextPage(current Page, checkIn bool) Page {
	if target, ok := transitionsFor(checkIn)[current]; ok {
		return target
	}
	return Page1
}

// PrevPage returns the page that transitions to current in the selected
// graph, falling back to Page1 when none does. The reverse lookup is
// well-defined only because each graph is an injective chain; a graph with
// two pages sharing a target would make it ambiguous.
func PrevPage(current Page, checkIn bool) Page {
	for from, to := range transitionsFor(checkIn) {
		if to == current {
			return from
		}
	}
	return Page1
}

// KnownPage reports whether p appears in either transition graph.
func KnownPage(p Page) bool {
	if p == Page1 || p == PageCheckedOut {
		return true
	}
	_, inOut := checkOutTransitions[p]
	_, inIn := checkInTransitions[p]
	return inOut || inIn
}
