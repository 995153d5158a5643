package models

const (
	ServiceTent     = "tent"
	ServiceUmbrella = "umbrella"
	ServiceParking  = "parking"
	ServicePool     = "pool"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
	PaymentCard     = "card"
	PaymentOther    = "other"
)

// DateLayout is the wire format for all booking dates. Fixed-width and
// zero-padded, so lexicographic comparison matches chronological order.
const DateLayout = "2006-01-02"

// PoolUnit is the fixed unit number for pool passes. Pool capacity is an
// occupancy cap, not a set of numbered units.
const PoolUnit = 1

const (
	// DefaultOccupancyCacheTTL время жизни кэша отчётов занятости
	DefaultOccupancyCacheTTL = 5 * 60 // 5 минут в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// DefaultTokenTTLMinutes срок действия токена по умолчанию
	DefaultTokenTTLMinutes = 12 * 60
)

var serviceTypes = map[string]bool{
	ServiceTent:     true,
	ServiceUmbrella: true,
	ServiceParking:  true,
	ServicePool:     true,
}

var paymentMethods = map[string]bool{
	PaymentCash:     true,
	PaymentTransfer: true,
	PaymentCard:     true,
	PaymentOther:    true,
}

func ValidServiceType(s string) bool { return serviceTypes[s] }

func ValidStatus(s string) bool { return s == StatusActive || s == StatusCancelled }

func ValidPaymentMethod(m string) bool { return paymentMethods[m] }
