package cashsession

import (
	"context"
	"fmt"
	"io"

	"adisyon-backend/internal/apperr"
	"adisyon-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary   = "Özet"
	sheetMovements = "Hareketler"
	sheetWarnings  = "Uyarılar"
)

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optMoney(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return money(*d)
}

// WriteReport: kapanmış oturumun dondurulmuş mutabakatını xlsx olarak yazar
func WriteReport(w io.Writer, sess *models.CashSession) error {
	if sess.Status != models.CashSessionClosed || sess.Snapshot == nil {
		return apperr.Validation("rapor sadece kapanmış kasa oturumu için alınabilir")
	}
	snap := sess.Snapshot

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	closedAt := ""
	if sess.ClosedAt != nil {
		closedAt = sess.ClosedAt.Format("2006-01-02 15:04")
	}

	rows := [][2]any{
		{"Oturum", sess.ID},
		{"Operatör", sess.OperatorID},
		{"Açılış", sess.OpenedAt.Format("2006-01-02 15:04")},
		{"Kapanış", closedAt},
		{"Açılış fonu", money(snap.OpeningFloat)},
		{"Nakit satış", money(snap.SalesByMethod.Cash)},
		{"Kart satış", money(snap.SalesByMethod.Card)},
		{"Havale satış", money(snap.SalesByMethod.Transfer)},
		{"Elle giriş", money(snap.ManualCashIn)},
		{"Elle çıkış", money(snap.ManualCashOut)},
		{"Nakit iade", money(snap.CashRefunds)},
		{"Nakit iptal", money(snap.CashVoids)},
		{"İptal adedi", snap.VoidCount},
		{"İade adedi", snap.RefundCount},
		{"Beklenen nakit", money(snap.ExpectedCash)},
		{"Sayılan nakit", optMoney(sess.CountedCash)},
		{"Fark", optMoney(sess.Difference)},
		{"Bırakılan fon", optMoney(sess.KeptFloat)},
		{"Çekilen", optMoney(sess.Withdrawal)},
		{"Kapanış notu", sess.ClosingNote},
	}
	for i, r := range rows {
		row := i + 1
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), r[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), r[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 18)

	if _, err := f.NewSheet(sheetMovements); err != nil {
		return err
	}
	header := []any{"Zaman", "Yön", "Tür", "Tutar", "Gerekçe"}
	if err := f.SetSheetRow(sheetMovements, "A1", &header); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetMovements, "A1", "E1", bold)
	for i, m := range sess.Movements {
		row := []any{m.CreatedAt.Format("2006-01-02 15:04"), string(m.Direction), string(m.Kind), money(m.Amount), m.Reason}
		if err := f.SetSheetRow(sheetMovements, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetWarnings); err != nil {
		return err
	}
	wHeader := []any{"Kod", "Seviye", "Açıklama"}
	if err := f.SetSheetRow(sheetWarnings, "A1", &wHeader); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetWarnings, "A1", "C1", bold)
	for i, wr := range snap.Warnings {
		row := []any{string(wr.Code), string(wr.Severity), wr.Message}
		if err := f.SetSheetRow(sheetWarnings, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// Report: kapanmış oturumun xlsx raporu. Oturumu açan operatör veya yönetici alabilir.
func (e *Engine) Report(ctx context.Context, actor models.Actor, sessionID uint, w io.Writer) error {
	sess, err := e.backend.GetSession(ctx, actor.BusinessID, sessionID)
	if err != nil {
		return err
	}
	if sess.OperatorID != actor.OperatorID && actor.Role == models.RoleCashier {
		return ErrNotOwner
	}
	return WriteReport(w, sess)
}
