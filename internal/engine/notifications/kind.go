package notifications

// Kind is the event tag carried in a notification's <kind> element.
type Kind string

const (
	KindCheck                             Kind = "check"
	KindSubMerchantAccountApproved        Kind = "sub_merchant_account_approved"
	KindSubMerchantAccountDeclined        Kind = "sub_merchant_account_declined"
	KindTransactionDisbursed              Kind = "transaction_disbursed"
	KindTransactionSettled                Kind = "transaction_settled"
	KindTransactionSettlementDeclined     Kind = "transaction_settlement_declined"
	KindDisbursement                      Kind = "disbursement"
	KindDisbursementException             Kind = "disbursement_exception"
	KindDisputeOpened                     Kind = "dispute_opened"
	KindDisputeLost                       Kind = "dispute_lost"
	KindDisputeWon                        Kind = "dispute_won"
	KindPartnerMerchantConnected          Kind = "partner_merchant_connected"
	KindPartnerMerchantDisconnected       Kind = "partner_merchant_disconnected"
	KindPartnerMerchantDeclined           Kind = "partner_merchant_declined"
	KindSubscriptionCanceled              Kind = "subscription_canceled"
	KindSubscriptionChargedSuccessfully   Kind = "subscription_charged_successfully"
	KindSubscriptionChargedUnsuccessfully Kind = "subscription_charged_unsuccessfully"
	KindSubscriptionExpired               Kind = "subscription_expired"
	KindSubscriptionTrialEnded            Kind = "subscription_trial_ended"
	KindSubscriptionWentActive            Kind = "subscription_went_active"
	KindSubscriptionWentPastDue           Kind = "subscription_went_past_due"
	KindAccountUpdaterDailyReport         Kind = "account_updater_daily_report"
)

var allKinds = []Kind{
	KindCheck,
	KindSubMerchantAccountApproved,
	KindSubMerchantAccountDeclined,
	KindTransactionDisbursed,
	KindTransactionSettled,
	KindTransactionSettlementDeclined,
	KindDisbursement,
	KindDisbursementException,
	KindDisputeOpened,
	KindDisputeLost,
	KindDisputeWon,
	KindPartnerMerchantConnected,
	KindPartnerMerchantDisconnected,
	KindPartnerMerchantDeclined,
	KindSubscriptionCanceled,
	KindSubscriptionChargedSuccessfully,
	KindSubscriptionChargedUnsuccessfully,
	KindSubscriptionExpired,
	KindSubscriptionTrialEnded,
	KindSubscriptionWentActive,
	KindSubscriptionWentPastDue,
	KindAccountUpdaterDailyReport,
}

// Kinds returns every kind the sandbox knows about, in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Known reports whether k is one of the declared kinds. Unknown kinds are
// still accepted everywhere; they render the generic subscription subject.
func (k Kind) Known() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}
