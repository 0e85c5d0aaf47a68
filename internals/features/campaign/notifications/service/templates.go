package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

/* =========================================================
   Notification kinds
   Closed set: dispatch is by enum, not free-form strings.
========================================================= */

type Kind string

const (
	// donor emails
	KindPaymentSuccess        Kind = "payment_success"
	KindPaymentFailed         Kind = "payment_failed"
	KindPaymentAuthorized     Kind = "payment_authorized"
	KindSubscriptionActivated Kind = "subscription_activated"
	KindSubscriptionPaused    Kind = "subscription_paused"
	KindSubscriptionResumed   Kind = "subscription_resumed"
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindSubscriptionHalted    Kind = "subscription_halted"
	KindSubscriptionCharged   Kind = "subscription_charged"
	KindRefundProcessed       Kind = "refund_processed"
	KindRetryReminder         Kind = "retry_reminder"
	KindFinalReminder         Kind = "final_reminder"

	// admin alerts
	KindAdminDispute           Kind = "admin_dispute"
	KindAdminDowntime          Kind = "admin_downtime"
	KindAdminSettlement        Kind = "admin_settlement"
	KindAdminFailedSummary     Kind = "admin_failed_summary"
	KindAdminSubscriptionAlert Kind = "admin_subscription_alert"
	KindAdminRefundFailed      Kind = "admin_refund_failed"
	KindAdminInvoiceExpired    Kind = "admin_invoice_expired"
)

// ParseKind resolves a template name from the internal dispatch endpoint.
func ParseKind(name string) (Kind, bool) {
	k := Kind(strings.TrimSpace(name))
	_, ok := registry[k]
	return k, ok
}

/* =========================================================
   Template data
========================================================= */

// Data is the render payload shared by all templates; each template reads
// the fields it needs. JSON tags match the original serverless payload keys
// so the internal /send-email endpoint stays wire-compatible.
type Data struct {
	ContributionID    *int64           `json:"id,omitempty"`
	DonorName         string           `json:"donor_name,omitempty"`
	Email             string           `json:"email,omitempty"`
	Type              string           `json:"type,omitempty"`
	Amount            decimal.Decimal  `json:"amount,omitempty"`
	RefundAmount      *decimal.Decimal `json:"refund_amount,omitempty"`
	RazorpayPaymentID string           `json:"razorpay_payment_id,omitempty"`
	FailureReason     string           `json:"failure_reason,omitempty"`
	RetryCount        int              `json:"retry_count,omitempty"`
	TotalPaymentsMade int              `json:"total_payments_made,omitempty"`
	SubscriptionState string           `json:"subscription_status,omitempty"`
	SubscriptionID    string           `json:"subscription_id,omitempty"`
	DisputeStatus     string           `json:"dispute_status,omitempty"`
	DisputeID         string           `json:"dispute_id,omitempty"`
	DisputeReason     string           `json:"dispute_reason,omitempty"`
	RefundID          string           `json:"refund_id,omitempty"`
	InvoiceID         string           `json:"invoice_id,omitempty"`
	EventType         string           `json:"event_type,omitempty"`
	Count             int              `json:"count,omitempty"`
	MaxRetries        int              `json:"max_retries,omitempty"`
}

type renderFunc func(d Data) (subject, html string)

var registry = map[Kind]renderFunc{
	KindPaymentSuccess:        paymentSuccess,
	KindPaymentFailed:         paymentFailed,
	KindPaymentAuthorized:     paymentAuthorized,
	KindSubscriptionActivated: subscriptionActivated,
	KindSubscriptionPaused:    subscriptionPaused,
	KindSubscriptionResumed:   subscriptionResumed,
	KindSubscriptionCancelled: subscriptionCancelled,
	KindSubscriptionHalted:    subscriptionHalted,
	KindSubscriptionCharged:   subscriptionCharged,
	KindRefundProcessed:       refundProcessed,
	KindRetryReminder:         retryReminder,
	KindFinalReminder:         finalReminder,

	KindAdminDispute:           adminDispute,
	KindAdminDowntime:          adminDowntime,
	KindAdminSettlement:        adminSettlement,
	KindAdminFailedSummary:     adminFailedSummary,
	KindAdminSubscriptionAlert: adminSubscriptionAlert,
	KindAdminRefundFailed:      adminRefundFailed,
	KindAdminInvoiceExpired:    adminInvoiceExpired,
}

// Render resolves and renders a template. ok=false for unknown kinds.
func Render(kind Kind, d Data) (subject, html string, ok bool) {
	fn, ok := registry[kind]
	if !ok {
		return "", "", false
	}
	subject, html = fn(d)
	return subject, html, true
}

/* =========================================================
   INR formatting (en-IN digit grouping: 1,00,000)
========================================================= */

func formatINR(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(parts, ",") + "," + tail
	}
	if neg {
		s = "-" + s
	}
	return s
}

func name(d Data) string {
	if d.DonorName == "" {
		return "Supporter"
	}
	return d.DonorName
}

func wrap(body string) string {
	return `<div style="font-family:'DM Sans',Arial,sans-serif;max-width:600px;margin:0 auto">` + body + `</div>`
}

/* =========================================================
   Donor templates
========================================================= */

func paymentSuccess(d Data) (string, string) {
	subject := fmt.Sprintf("✅ Thank you for sponsoring a girl's future, %s!", name(d))
	kind := "Individual Sponsorship"
	if d.Type == "group" {
		kind = "Group Sponsorship"
	}
	body := fmt.Sprintf(
		`<h1>Payment Successful!</h1><p>Dear <strong>%s</strong>,</p>
<p>Your sponsorship payment of <strong>₹%s</strong> has been received successfully.</p>
<p>Payment ID: %s<br>Type: %s<br>Date: %s</p>
<p>Your 80G tax receipt will be available from your sponsorship confirmation page.</p>
<p>With gratitude,<br><strong>Ilika Foundation</strong></p>`,
		name(d), formatINR(d.Amount), orNA(d.RazorpayPaymentID), kind,
		time.Now().Format("2 January 2006"))
	return subject, wrap(body)
}

func paymentFailed(d Data) (string, string) {
	subject := "⚠️ Payment failed — your sponsorship needs attention"
	reason := ""
	if d.FailureReason != "" {
		reason = fmt.Sprintf("<p><strong>Reason:</strong> %s</p>", d.FailureReason)
	}
	body := fmt.Sprintf(
		`<h1>Payment Failed</h1><p>Dear <strong>%s</strong>,</p>
<p>Your payment of <strong>₹%s</strong> could not be processed.</p>%s
<p>Don't worry — you can try again anytime at https://ilikafoundation.vercel.app</p>`,
		name(d), formatINR(d.Amount), reason)
	return subject, wrap(body)
}

func paymentAuthorized(d Data) (string, string) {
	subject := "🔄 Payment authorized — processing your sponsorship"
	body := fmt.Sprintf(
		`<h1>Payment Authorized</h1><p>Dear <strong>%s</strong>,</p>
<p>Your payment of <strong>₹%s</strong> has been authorized and is being processed.
You'll receive a confirmation once it's captured.</p>`,
		name(d), formatINR(d.Amount))
	return subject, wrap(body)
}

func subscriptionActivated(d Data) (string, string) {
	subject := "🎉 Your monthly sponsorship is now active!"
	body := fmt.Sprintf(
		`<h1>Subscription Active!</h1><p>Dear <strong>%s</strong>,</p>
<p>Your recurring sponsorship of <strong>₹%s/month</strong> is now active.
A girl's future is being transformed because of your generosity.</p>`,
		name(d), formatINR(d.Amount))
	return subject, wrap(body)
}

func subscriptionPaused(d Data) (string, string) {
	subject := "⏸️ Your sponsorship has been paused"
	body := fmt.Sprintf(
		`<h1>Subscription Paused</h1><p>Dear <strong>%s</strong>,</p>
<p>Your monthly sponsorship has been paused. You can resume it anytime —
the girl you're sponsoring is counting on you!</p>`,
		name(d))
	return subject, wrap(body)
}

func subscriptionResumed(d Data) (string, string) {
	subject := "▶️ Your sponsorship has been resumed — thank you!"
	body := fmt.Sprintf(
		`<h1>Subscription Resumed!</h1><p>Dear <strong>%s</strong>,</p>
<p>Welcome back! Your monthly sponsorship of <strong>₹%s</strong> has been resumed.
Thank you for continuing to support a girl's education!</p>`,
		name(d), formatINR(d.Amount))
	return subject, wrap(body)
}

func subscriptionCancelled(d Data) (string, string) {
	subject := "Your sponsorship has been cancelled"
	body := fmt.Sprintf(
		`<h1>Subscription Cancelled</h1><p>Dear <strong>%s</strong>,</p>
<p>Your sponsorship has been cancelled. We're sorry to see you go.
If you ever want to return, we'd love to have you back.</p>`,
		name(d))
	return subject, wrap(body)
}

func subscriptionHalted(d Data) (string, string) {
	subject := "🚨 Action needed — your sponsorship payment couldn't be charged"
	body := fmt.Sprintf(
		`<h1>Payment Issue</h1><p>Dear <strong>%s</strong>,</p>
<p>We were unable to charge your payment method for your monthly sponsorship.
Your subscription has been halted.</p>
<p>Please update your payment method to keep a girl's education going.</p>`,
		name(d))
	return subject, wrap(body)
}

func subscriptionCharged(d Data) (string, string) {
	subject := fmt.Sprintf("✅ Monthly sponsorship payment received — ₹%s", formatINR(d.Amount))
	count := d.TotalPaymentsMade
	if count < 1 {
		count = 1
	}
	body := fmt.Sprintf(
		`<h1>Monthly Payment Received</h1><p>Dear <strong>%s</strong>,</p>
<p>Your monthly sponsorship payment of <strong>₹%s</strong> has been received.
Payment #%d. Thank you for your continued support!</p>`,
		name(d), formatINR(d.Amount), count)
	return subject, wrap(body)
}

func refundProcessed(d Data) (string, string) {
	amt := d.Amount
	if d.RefundAmount != nil {
		amt = *d.RefundAmount
	}
	subject := fmt.Sprintf("💸 Refund of ₹%s processed", formatINR(amt))
	body := fmt.Sprintf(
		`<h1>Refund Processed</h1><p>Dear <strong>%s</strong>,</p>
<p>A refund of <strong>₹%s</strong> has been processed to your original payment
method. It may take 5-7 business days to reflect.</p>`,
		name(d), formatINR(amt))
	return subject, wrap(body)
}

func retryReminder(d Data) (string, string) {
	subject := fmt.Sprintf("🙏 Your sponsorship payment needs attention (attempt %d/3)", d.RetryCount)
	body := fmt.Sprintf(
		`<h1>Please don't give up!</h1><p>Dear <strong>%s</strong>,</p>
<p>Your payment of <strong>₹%s</strong> wasn't successful. A girl's future is
at stake — please try again.</p>
<p>This is reminder %d of 3.</p>`,
		name(d), formatINR(d.Amount), d.RetryCount)
	return subject, wrap(body)
}

func finalReminder(d Data) (string, string) {
	subject := fmt.Sprintf("We miss you, %s — one last chance to change a life", name(d))
	body := fmt.Sprintf(
		`<h1>We miss you 💛</h1><p>Dear <strong>%s</strong>,</p>
<p>We've tried reaching out about your sponsorship payment of <strong>₹%s</strong>,
but it hasn't gone through.</p>
<p>If you still want to sponsor a girl's education, you can restart anytime.</p>`,
		name(d), formatINR(d.Amount))
	return subject, wrap(body)
}

/* =========================================================
   Admin templates
========================================================= */

func adminDispute(d Data) (string, string) {
	subject := fmt.Sprintf("🚨 DISPUTE: %s — ₹%s from %s", d.DisputeStatus, formatINR(d.Amount), name(d))
	body := fmt.Sprintf(
		`<h1>Payment Dispute Alert</h1>
<p>Donor: %s (%s)<br>Amount: ₹%s<br>Dispute Status: %s<br>Dispute ID: %s<br>
Reason: %s<br>Payment ID: %s</p>
<p>Review in the Razorpay dashboard.</p>`,
		name(d), d.Email, formatINR(d.Amount), strings.ToUpper(d.DisputeStatus),
		orNA(d.DisputeID), orElse(d.DisputeReason, "Not specified"), orNA(d.RazorpayPaymentID))
	return subject, wrap(body)
}

func adminDowntime(d Data) (string, string) {
	label := "UPDATE"
	heading := "Payment Downtime Update"
	if strings.Contains(d.EventType, "started") {
		label = "DOWNTIME"
		heading = "Payment Downtime Alert"
	} else if strings.Contains(d.EventType, "resolved") {
		label = "RECOVERED"
		heading = "Payment Systems Recovered"
	}
	subject := fmt.Sprintf("⚠️ Razorpay %s", label)
	body := fmt.Sprintf(
		`<h1>%s</h1><p>Event: <strong>%s</strong><br>Time: <strong>%s</strong></p>
<p>New payments may be affected during downtime.</p>`,
		heading, d.EventType, time.Now().Format(time.RFC1123))
	return subject, wrap(body)
}

func adminSettlement(d Data) (string, string) {
	subject := "💰 Settlement processed — check Razorpay dashboard"
	body := fmt.Sprintf(
		`<h1>Settlement Processed</h1>
<p>Event: <strong>%s</strong>. A settlement has been processed by Razorpay.
Please check your dashboard for details.</p>`, d.EventType)
	return subject, wrap(body)
}

func adminFailedSummary(d Data) (string, string) {
	subject := fmt.Sprintf("📊 %d failed payments need attention", d.Count)
	body := fmt.Sprintf(
		`<h1>Failed Payment Summary</h1>
<p><strong>%d</strong> contributions have failed payments requiring attention.</p>
<p><strong>%d</strong> have exhausted all retry attempts.</p>`,
		d.Count, d.MaxRetries)
	return subject, wrap(body)
}

func adminSubscriptionAlert(d Data) (string, string) {
	subject := fmt.Sprintf("🚨 Subscription %s — ₹%s/month from %s", d.SubscriptionState, formatINR(d.Amount), name(d))
	body := fmt.Sprintf(
		`<h1>Revenue At Risk</h1>
<p>Donor: %s (%s)<br>Amount: ₹%s/month<br>Subscription status: <strong>%s</strong><br>
Subscription ID: %s</p>
<p>This donor may need a follow-up.</p>`,
		name(d), d.Email, formatINR(d.Amount), d.SubscriptionState, orNA(d.SubscriptionID))
	return subject, wrap(body)
}

func adminRefundFailed(d Data) (string, string) {
	subject := fmt.Sprintf("🚨 REFUND FAILED — ₹%s to %s", formatINR(d.Amount), name(d))
	body := fmt.Sprintf(
		`<h1>Refund Failed</h1>
<p>Donor: %s (%s)<br>Refund ID: %s<br>Payment ID: %s</p>
<p>The money has not returned to the donor. Operator intervention required.</p>`,
		name(d), d.Email, orNA(d.RefundID), orNA(d.RazorpayPaymentID))
	return subject, wrap(body)
}

func adminInvoiceExpired(d Data) (string, string) {
	subject := "⚠️ Razorpay invoice expired"
	body := fmt.Sprintf(
		`<h1>Invoice Expired</h1>
<p>Invoice <strong>%s</strong> expired without payment (event %s).
The associated subscription charge did not complete.</p>`,
		orNA(d.InvoiceID), d.EventType)
	return subject, wrap(body)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orElse(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
