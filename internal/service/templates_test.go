package service

import (
	"testing"

	"catering-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEventMail(t *testing.T) {
	t.Run("request approved", func(t *testing.T) {
		mail, err := RenderEventMail(model.NotifyRequestApproved, map[string]interface{}{
			"RequestNo":    "REQ-2026-00042",
			"EventName":    "Faculty Dinner",
			"ApproverName": "Kwame Boateng",
		})
		require.NoError(t, err)
		assert.Equal(t, "Service request REQ-2026-00042 approved", mail.Subject)
		assert.Contains(t, mail.Text, "Faculty Dinner")
		assert.Contains(t, mail.Text, "Kwame Boateng")
		assert.Contains(t, mail.HTML, mail.Subject)
	})

	t.Run("rejection without reason omits the reason clause", func(t *testing.T) {
		mail, err := RenderEventMail(model.NotifyRequestRejected, map[string]interface{}{
			"RequestNo": "REQ-2026-00001",
			"EventName": "Orientation",
		})
		require.NoError(t, err)
		assert.NotContains(t, mail.Text, "Reason:")
	})

	t.Run("rejection with reason includes it", func(t *testing.T) {
		mail, err := RenderEventMail(model.NotifyRequestRejected, map[string]interface{}{
			"RequestNo": "REQ-2026-00001",
			"EventName": "Orientation",
			"Reason":    "Budget exhausted",
		})
		require.NoError(t, err)
		assert.Contains(t, mail.Text, "Reason: Budget exhausted")
	})

	t.Run("payment recorded", func(t *testing.T) {
		mail, err := RenderEventMail(model.NotifyPaymentRecorded, map[string]interface{}{
			"InvoiceNo":     "INV-20260830-00003",
			"Amount":        "500.00",
			"InvoiceStatus": model.InvoicePartiallyPaid,
		})
		require.NoError(t, err)
		assert.Contains(t, mail.Subject, "INV-20260830-00003")
		assert.Contains(t, mail.Text, "PARTIALLY_PAID")
	})

	t.Run("every event type has a template", func(t *testing.T) {
		types := []string{
			model.NotifyRequestCreated,
			model.NotifyRequestApproved,
			model.NotifyRequestRejected,
			model.NotifyRequestRevision,
			model.NotifyRequestResubmitted,
			model.NotifyInvoiceCreated,
			model.NotifyPaymentRecorded,
			model.NotifyFinanceAction,
		}
		for _, eventType := range types {
			_, err := RenderEventMail(eventType, map[string]interface{}{})
			assert.NoError(t, err, "event type %s should render", eventType)
		}
	})

	t.Run("unknown event type errors", func(t *testing.T) {
		_, err := RenderEventMail("nonexistent", nil)
		assert.Error(t, err)
	})
}
