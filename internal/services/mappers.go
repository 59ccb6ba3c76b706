package services

import (
	"isp-order-system/internal/dto"
	"isp-order-system/internal/entities"
)

const timeLayout = "2006-01-02 15:04:05"

func orderToDTO(o *entities.Order) dto.OrderDTO {
	out := dto.OrderDTO{
		ID:        o.ID,
		Kind:      string(o.Kind),
		AppNumber: o.AppNumber,
		ClientID:  o.ClientID,
		Address:   o.Address,
		Region:    o.Region,
		Status:    o.Status,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt.Local().Format(timeLayout),
		UpdatedAt: o.UpdatedAt.Local().Format(timeLayout),
	}
	if o.TariffRef.Valid {
		tariff := o.TariffRef.String
		out.TariffRef = &tariff
	}
	return out
}

// handoffToDTO обогащает запись журнала данными участников, если они
// известны вызывающей стороне (nil — останутся только id).
func handoffToDTO(rec *entities.HandoffRecord, sender, recipient *entities.User) dto.HandoffDTO {
	out := dto.HandoffDTO{
		ID:              rec.ID,
		Sender:          dto.ShortUserDTO{ID: rec.SenderID},
		Recipient:       dto.ShortUserDTO{ID: rec.RecipientID},
		SenderStatus:    rec.SenderStatus,
		RecipientStatus: rec.RecipientStatus,
		TxID:            rec.TxID.String(),
		CreatedAt:       rec.CreatedAt.Local().Format(timeLayout),
	}
	if sender != nil {
		out.Sender.Fio, out.Sender.Role = sender.Fio, sender.Role
	}
	if recipient != nil {
		out.Recipient.Fio, out.Recipient.Role = recipient.Fio, recipient.Role
	}
	return out
}
