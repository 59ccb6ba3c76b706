package dto

type HandoffDTO struct {
	ID              uint64       `json:"id"`
	Sender          ShortUserDTO `json:"sender"`
	Recipient       ShortUserDTO `json:"recipient"`
	SenderStatus    string       `json:"sender_status"`
	RecipientStatus string       `json:"recipient_status"`
	TxID            string       `json:"tx_id"`
	CreatedAt       string       `json:"created_at"`
}

// InboxItemDTO — заявка вместе с последней передачей по ней.
type InboxItemDTO struct {
	Order   OrderDTO   `json:"order"`
	Handoff HandoffDTO `json:"handoff"`
}

// CandidateDTO — кандидат на назначение с текущей загрузкой.
type CandidateDTO struct {
	UserID uint64 `json:"user_id"`
	Fio    string `json:"fio"`
	Load   int64  `json:"load"`
}
