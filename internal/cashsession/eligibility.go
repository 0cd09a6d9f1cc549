package cashsession

import "adisyon-backend/internal/models"

// Reversal: ödenmiş bir ödemeyi geri almanın tek geçerli yolu
type Reversal string

const (
	ReversalNone   Reversal = "none"
	ReversalVoid   Reversal = "void"   // aynı, hâlâ açık oturumda
	ReversalRefund Reversal = "refund" // oturum kapanmış ya da başka oturum açık
)

// ReversalFor: ödemenin kayıtlı oturumunu operatörün şu an açık oturumuyla karşılaştırır.
// open, işlemi yapan operatörün açık oturumudur (yoksa nil). Önbellekteki bayraklara bakılmaz.
func ReversalFor(p models.Payment, open *models.CashSession) Reversal {
	if p.Status != models.PaymentStatusPaid {
		return ReversalNone
	}
	if open != nil && open.Status == models.CashSessionOpen && open.ID == p.CashSessionID {
		return ReversalVoid
	}
	return ReversalRefund
}
