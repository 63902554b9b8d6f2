package domain

type BatchStatus string

const (
	BatchStatusOrdered   BatchStatus = "ordered"
	BatchStatusInMailbox BatchStatus = "in_mailbox"
	BatchStatusInTransit BatchStatus = "in_transit"
	BatchStatusCustoms   BatchStatus = "customs"
	BatchStatusDelivered BatchStatus = "delivered"
	BatchStatusCompleted BatchStatus = "completed"
)

// BatchStatuses lists every status in lifecycle order.
var BatchStatuses = []BatchStatus{
	BatchStatusOrdered,
	BatchStatusInMailbox,
	BatchStatusInTransit,
	BatchStatusCustoms,
	BatchStatusDelivered,
	BatchStatusCompleted,
}

var batchStatusLabels = map[BatchStatus]string{
	BatchStatusOrdered:   "Ordenado",
	BatchStatusInMailbox: "En Casillero",
	BatchStatusInTransit: "En Tránsito",
	BatchStatusCustoms:   "En Aduana",
	BatchStatusDelivered: "Entregado",
	BatchStatusCompleted: "Completado",
}

func (s BatchStatus) Valid() bool {
	_, ok := batchStatusLabels[s]
	return ok
}

func (s BatchStatus) IsActive() bool {
	return s != BatchStatusCompleted
}

func (s BatchStatus) Label() string {
	if label, ok := batchStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPaymentPending OrderStatus = "payment_pending"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// CountsAsRevenue is true once the order has been paid and not cancelled.
func (s OrderStatus) CountsAsRevenue() bool {
	switch s {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodMercadoPago PaymentMethod = "mercadopago"
	PaymentMethodTransfer    PaymentMethod = "transfer"
	PaymentMethodCash        PaymentMethod = "cash"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodMercadoPago,
	PaymentMethodTransfer,
	PaymentMethodCash,
}
