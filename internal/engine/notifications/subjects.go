package notifications

// subjectFunc renders the <subject> contents for one kind.
type subjectFunc func(id string) Element

var subjects = map[Kind]subjectFunc{
	KindCheck:                           checkSubject,
	KindSubMerchantAccountApproved:      merchantAccountActiveSubject,
	KindSubMerchantAccountDeclined:      merchantAccountDeclinedSubject,
	KindTransactionDisbursed:            transactionDisbursedSubject,
	KindTransactionSettled:              bankTransactionSubject("settled"),
	KindTransactionSettlementDeclined:   bankTransactionSubject("settlement_declined"),
	KindDisbursement:                    disbursementSubject,
	KindDisbursementException:           disbursementExceptionSubject,
	KindDisputeOpened:                   disputeSubject("open"),
	KindDisputeLost:                     disputeSubject("lost"),
	KindDisputeWon:                      disputeWonSubject,
	KindPartnerMerchantConnected:        partnerMerchantConnectedSubject,
	KindPartnerMerchantDisconnected:     partnerMerchantSubject,
	KindPartnerMerchantDeclined:         partnerMerchantSubject,
	KindSubscriptionChargedSuccessfully: subscriptionChargedSuccessfullySubject,
	KindAccountUpdaterDailyReport:       accountUpdaterDailyReportSubject,
}

// subjectFor picks the template for kind. Kinds without a dedicated template,
// including ones this package has never heard of, get the generic
// subscription subject so newer event kinds keep producing parseable
// notifications.
func subjectFor(kind Kind) subjectFunc {
	if fn, ok := subjects[kind]; ok {
		return fn
	}
	return subscriptionSubject
}

func checkSubject(string) Element {
	return LeafWithAttrs("check", TypeBoolean, "true")
}

func merchantAccountActiveSubject(id string) Element {
	return Node("merchant-account",
		Leaf("id", id),
		Node("master-merchant-account",
			Leaf("id", id),
			Leaf("status", "active"),
		),
		Leaf("status", "active"),
	)
}

func merchantAccountDeclinedSubject(id string) Element {
	return Node("api-error-response",
		Leaf("message", "Credit score is too low"),
		NodeWithAttrs("errors", TypeArray,
			Node("merchant-account",
				NodeWithAttrs("errors", TypeArray,
					Node("error",
						Leaf("code", "82621"),
						Leaf("message", "Credit score is too low"),
						LeafWithAttrs("attribute", TypeSymbol, "base"),
					),
				),
			),
		),
		Node("merchant-account",
			Leaf("id", id),
			Leaf("status", "suspended"),
			Node("master-merchant-account",
				Leaf("id", "master_ma_for_"+id),
				Leaf("status", "suspended"),
			),
		),
	)
}

// transactionStubs are the empty associations every transaction snapshot
// carries so the parser builds zero-valued sub-objects.
func transactionStubs() []Element {
	return []Element{
		Node("billing"),
		Node("credit-card"),
		Node("customer"),
		Node("descriptor"),
		Node("shipping"),
		Node("subscription"),
	}
}

func transactionDisbursedSubject(id string) Element {
	children := []Element{
		Leaf("id", id),
		Leaf("amount", "100"),
		Node("disbursement-details",
			LeafWithAttrs("disbursement-date", TypeDate, "2013-07-09"),
		),
	}
	return Node("transaction", append(children, transactionStubs()...)...)
}

func bankTransactionSubject(status string) subjectFunc {
	return func(id string) Element {
		children := []Element{
			Leaf("id", id),
			Leaf("status", status),
			Leaf("amount", "100"),
			Node("us-bank-account",
				Leaf("routing-number", "123456789"),
				Leaf("last-4", "1234"),
				Leaf("account-type", "checking"),
				Leaf("account-description", "PayPal Checking - 1234"),
				Leaf("account-holder-name", "Dan Schulman"),
			),
			Node("disbursement-details"),
		}
		return Node("transaction", append(children, transactionStubs()...)...)
	}
}

func disputeSubject(status string) subjectFunc {
	return func(id string) Element {
		return Node("dispute", disputeFields(id, status, nil)...)
	}
}

func disputeWonSubject(id string) Element {
	won := LeafWithAttrs("date-won", TypeDate, "2014-03-22")
	return Node("dispute", disputeFields(id, "won", &won)...)
}

func disputeFields(id, status string, dateWon *Element) []Element {
	fields := []Element{
		Leaf("id", id),
		Leaf("amount", "250.00"),
		LeafWithAttrs("received-date", TypeDate, "2014-03-21"),
		LeafWithAttrs("reply-by-date", TypeDate, "2014-03-21"),
		LeafWithAttrs("date-opened", TypeDate, "2014-03-21"),
	}
	if dateWon != nil {
		fields = append(fields, *dateWon)
	}
	return append(fields,
		Leaf("kind", "chargeback"),
		Leaf("currency-iso-code", "USD"),
		Leaf("status", status),
		Leaf("reason", "fraud"),
		Node("transaction",
			Leaf("id", id),
			Leaf("amount", "250.00"),
		),
	)
}

func disbursementSubject(id string) Element {
	return disbursement(id, "true", NodeWithAttrs("exception-message", NilTrue), NodeWithAttrs("follow-up-action", NilTrue))
}

func disbursementExceptionSubject(id string) Element {
	return disbursement(id, "false", Leaf("exception-message", "bank_rejected"), Leaf("follow-up-action", "update_account_information"))
}

func disbursement(id, success string, exceptionMessage, followUpAction Element) Element {
	return Node("disbursement",
		Leaf("id", id),
		NodeWithAttrs("transaction-ids", TypeArray,
			Leaf("item", "asdf"),
			Leaf("item", "qwer"),
		),
		LeafWithAttrs("success", TypeBoolean, success),
		LeafWithAttrs("retry", TypeBoolean, "false"),
		exceptionMessage,
		Leaf("amount", "100.00"),
		LeafWithAttrs("disbursement-date", TypeDate, "2014-02-10"),
		followUpAction,
		Node("merchant-account",
			Leaf("id", "merchant_account_token"),
			Leaf("currency-iso-code", "USD"),
			LeafWithAttrs("sub-merchant-account", TypeBoolean, "false"),
			Leaf("status", "active"),
		),
	)
}

func partnerMerchantConnectedSubject(string) Element {
	return Node("partner-merchant",
		Leaf("partner-merchant-id", "abc123"),
		Leaf("merchant-public-id", "public_id"),
		Leaf("public-key", "public_key"),
		Leaf("private-key", "private_key"),
		Leaf("client-side-encryption-key", "cse_key"),
	)
}

func partnerMerchantSubject(string) Element {
	return Node("partner-merchant",
		Leaf("partner-merchant-id", "abc123"),
	)
}

func subscriptionSubject(id string) Element {
	return Node("subscription",
		Leaf("id", id),
		NodeWithAttrs("transactions", TypeArray),
		NodeWithAttrs("add_ons", TypeArray),
		NodeWithAttrs("discounts", TypeArray),
	)
}

func subscriptionChargedSuccessfullySubject(id string) Element {
	return Node("subscription",
		Leaf("id", id),
		NodeWithAttrs("add_ons", TypeArray),
		Node("transactions",
			Node("transaction",
				Leaf("id", "1"),
				Leaf("status", "submitted_for_settlement"),
				Leaf("amount", "49.99"),
				Node("billing"),
				Node("credit-card"),
				Node("customer"),
				Node("descriptor"),
				Node("shipping"),
				NodeWithAttrs("disbursement-details", TypeArray),
				Node("subscription"),
			),
		),
		NodeWithAttrs("discounts", TypeArray),
	)
}

func accountUpdaterDailyReportSubject(string) Element {
	return Node("account-updater-daily-report",
		Leaf("report-url", "link-to-csv-report"),
		LeafWithAttrs("report-date", TypeDate, "2016-01-14"),
	)
}
