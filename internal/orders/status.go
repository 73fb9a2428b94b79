package orders

type Status string

const (
	StatusPendingPayment  Status = "PENDING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusPreparing       Status = "PREPARING"
	StatusShipped         Status = "SHIPPED"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
	StatusRefundRequested Status = "REFUND_REQUESTED"
	StatusRefunded        Status = "REFUNDED"
)

// Tabel transisi tunggal — semua mutator lewat sini, tidak ada conditional
// tersebar. CANCELLED & REFUNDED terminal (tanpa target).
var validNext = map[Status]map[Status]bool{
	StatusPendingPayment:  {StatusPaid: true, StatusCancelled: true},
	StatusPaid:            {StatusPreparing: true, StatusCancelled: true, StatusRefundRequested: true},
	StatusPreparing:       {StatusShipped: true, StatusCancelled: true, StatusRefundRequested: true},
	StatusShipped:         {StatusDelivered: true, StatusRefundRequested: true},
	StatusDelivered:       {StatusRefundRequested: true},
	StatusRefundRequested: {StatusRefunded: true, StatusDelivered: true},
	StatusCancelled:       {},
	StatusRefunded:        {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsPending() bool { return s == StatusPendingPayment }

func (s Status) IsCancellable() bool {
	return s == StatusPendingPayment || s == StatusPaid || s == StatusPreparing
}

func (s Status) IsTerminal() bool { return len(validNext[s]) == 0 }
