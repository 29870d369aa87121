package knowledge

import "time"

// Built-in New Zealand startup compliance calendar. Dates and thresholds
// carry the review date they were last checked against; the index treats
// them as valid as of that date, not as of query time.

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func builtinEntries() []Entry {
	return []Entry{
		{
			Topic:         "GST rate",
			Content:       "GST in New Zealand is 15% on most goods and services.",
			DocumentType:  "tax_rule",
			SourceName:    "Inland Revenue",
			Locator:       "kb:gst/rate",
			Authority:     "primary",
			DatePublished: date(2023, time.January, 1),
			DateEffective: date(2010, time.October, 1),
			Keywords:      []string{"gst", "rate", "percent", "percentage", "goods", "services"},
			Confidence:    0.95,
		},
		{
			Topic:         "GST registration threshold",
			Content:       "GST registration is required once turnover exceeds $60,000 in any 12-month period, or when you expect it to.",
			DocumentType:  "tax_rule",
			SourceName:    "Inland Revenue",
			Locator:       "kb:gst/registration",
			Authority:     "primary",
			DatePublished: date(2023, time.January, 1),
			Keywords:      []string{"gst", "registration", "register", "threshold", "turnover", "60000"},
			Confidence:    0.95,
		},
		{
			Topic:         "GST return frequency",
			Content:       "GST returns are filed 6-monthly when turnover is under $500,000, 2-monthly between $500,000 and $24 million, and monthly above $24 million.",
			DocumentType:  "filing_procedure",
			SourceName:    "Inland Revenue",
			Locator:       "kb:gst/returns",
			Authority:     "primary",
			DatePublished: date(2023, time.January, 1),
			Keywords:      []string{"gst", "return", "returns", "filing", "frequency", "monthly", "period"},
			Confidence:    0.9,
		},
		{
			Topic:         "PAYE obligations",
			Content:       "Employers must deduct PAYE from wages and file employment information each payday. PAYE registration is required when paying employees or contractors more than $200.",
			DocumentType:  "tax_rule",
			SourceName:    "Inland Revenue",
			Locator:       "kb:paye/obligations",
			Authority:     "primary",
			DatePublished: date(2023, time.April, 1),
			Keywords:      []string{"paye", "employer", "employees", "wages", "salary", "deductions", "payday", "200"},
			Confidence:    0.9,
		},
		{
			Topic:         "PAYE return filing",
			Content:       "PAYE returns are filed monthly when employing staff; payment is due by the 20th of the following month for most employers.",
			DocumentType:  "filing_procedure",
			SourceName:    "Inland Revenue",
			Locator:       "kb:paye/returns",
			Authority:     "primary",
			DatePublished: date(2023, time.April, 1),
			Keywords:      []string{"paye", "return", "returns", "filing", "monthly", "payment", "due"},
			Confidence:    0.9,
		},
		{
			Topic:         "Provisional tax instalments",
			Content:       "Provisional tax payments are due 28 August, 15 January, and 7 May for a standard March balance date.",
			DocumentType:  "calendar_entry",
			SourceName:    "Inland Revenue",
			Locator:       "kb:provisional-tax/instalments",
			Authority:     "primary",
			DatePublished: date(2023, time.January, 1),
			Keywords:      []string{"provisional", "tax", "instalment", "instalments", "installment", "payments", "due", "dates"},
			Confidence:    0.95,
		},
		{
			Topic:         "Income tax return due date",
			Content:       "Income tax returns are due 7 April, or the extension date when filing through a tax agent.",
			DocumentType:  "calendar_entry",
			SourceName:    "Inland Revenue",
			Locator:       "kb:income-tax/return",
			Authority:     "primary",
			DatePublished: date(2023, time.January, 1),
			Keywords:      []string{"income", "tax", "return", "due", "april", "extension", "ir3"},
			Confidence:    0.9,
		},
		{
			Topic:         "Company annual return",
			Content:       "The Companies Office annual return is due by the anniversary of the incorporation date. It confirms company details and is not a tax return.",
			DocumentType:  "calendar_entry",
			SourceName:    "Companies Office",
			Locator:       "kb:company/annual-return",
			Authority:     "primary",
			DatePublished: date(2023, time.June, 1),
			Keywords:      []string{"company", "annual", "return", "companies", "office", "incorporation", "anniversary"},
			Confidence:    0.9,
		},
		{
			Topic:         "Financial statements deadline",
			Content:       "Financial statements must be completed within 5 months of balance date.",
			DocumentType:  "calendar_entry",
			SourceName:    "Companies Office",
			Locator:       "kb:company/financial-statements",
			Authority:     "primary",
			DatePublished: date(2023, time.June, 1),
			Keywords:      []string{"financial", "statements", "accounts", "balance", "date", "deadline"},
			Confidence:    0.85,
		},
		{
			Topic:         "Company registration",
			Content:       "Company registration with the Companies Office is required before starting business operations.",
			DocumentType:  "filing_procedure",
			SourceName:    "Companies Office",
			Locator:       "kb:company/registration",
			Authority:     "primary",
			DatePublished: date(2023, time.June, 1),
			Keywords:      []string{"company", "registration", "register", "incorporate", "incorporation", "business"},
			Confidence:    0.9,
		},
		{
			Topic:         "Employment agreements",
			Content:       "Written employment agreements are required from the first day of work, alongside holiday and leave entitlements, health and safety requirements, and minimum wage compliance.",
			DocumentType:  "employment_rule",
			SourceName:    "Employment New Zealand",
			Locator:       "kb:employment/agreements",
			Authority:     "primary",
			DatePublished: date(2023, time.April, 1),
			Keywords:      []string{"employment", "agreement", "agreements", "hiring", "staff", "employee", "wage", "leave", "holiday"},
			Confidence:    0.85,
		},
		{
			Topic:         "KiwiSaver employer contributions",
			Content:       "Employers must contribute a minimum of 3% of gross salary for enrolled employees, on top of PAYE obligations.",
			DocumentType:  "tax_rule",
			SourceName:    "Inland Revenue",
			Locator:       "kb:kiwisaver/employer",
			Authority:     "primary",
			DatePublished: date(2023, time.April, 1),
			Keywords:      []string{"kiwisaver", "employer", "contribution", "contributions", "salary"},
			Confidence:    0.9,
		},
	}
}
