package models

import "time"

// Attachment is a binary file sent along with a mail.
type Attachment struct {
	Name string
	Data []byte
}

// Mail is a single outgoing message with one attachment.
type Mail struct {
	Subject    string
	Body       string
	From       string
	FromName   string
	To         []string
	Cc         []string
	Attachment Attachment
}

// Delivery is the outcome of sending to one recipient on one channel.
type Delivery struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Err       error  `json:"-"`
}

func (d Delivery) OK() bool { return d.Err == nil }

// ReportRequest asks for a full run for one date.
type ReportRequest struct {
	Date        time.Time `json:"date"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Send        bool      `json:"send"`
}

// RunResult summarizes a completed run.
type RunResult struct {
	Report     Report     `json:"report"`
	TextPath   string     `json:"text_path"`
	SheetPath  string     `json:"sheet_path"`
	Deliveries []Delivery `json:"deliveries"`
}

// Failed returns the deliveries that did not go through.
func (r RunResult) Failed() []Delivery {
	var out []Delivery
	for _, d := range r.Deliveries {
		if !d.OK() {
			out = append(out, d)
		}
	}
	return out
}
