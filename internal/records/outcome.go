package records

// Status codes for mutation outcomes. They follow HTTP conventions so a
// transport layer can pass them through unchanged.
const (
	StatusAccepted     = 202 // mutation accepted and persisted
	StatusBadRequest   = 400 // structural/schema parse failure
	StatusUnauthorized = 401 // authentication/authorization failure
	StatusNotFound     = 404 // no prior record, or prior newest already a delete
	StatusConflict     = 409 // incoming message not newest
)

// Outcome is the decision for one incoming message.
//
// Conflict and NotFound are distinct on purpose: callers must be able to
// tell "your mutation lost a race" from "nothing to delete". None of the
// rejecting outcomes mutate state.
type Outcome struct {
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`

	// CID is the content identifier of the message, set when it was
	// computed (all outcomes past structural parse).
	CID string `json:"cid,omitempty"`
}

// Accepted reports whether the mutation was persisted.
func (o Outcome) Accepted() bool {
	return o.Status == StatusAccepted
}

func accepted(cid string) Outcome {
	return Outcome{Status: StatusAccepted, CID: cid}
}

func badRequest(detail string) Outcome {
	return Outcome{Status: StatusBadRequest, Detail: detail}
}

func unauthorized(cid, detail string) Outcome {
	return Outcome{Status: StatusUnauthorized, Detail: detail, CID: cid}
}

func notFound(cid, detail string) Outcome {
	return Outcome{Status: StatusNotFound, Detail: detail, CID: cid}
}

func conflict(cid, detail string) Outcome {
	return Outcome{Status: StatusConflict, Detail: detail, CID: cid}
}
