// Package playbook holds the organization's contract review standards: the
// canonical clause library, the anchor keywords that signal each clause
// category, and the drafting guidance injected into every redline prompt.
package playbook

// CategoryUnknown is the sentinel returned when no library match exists.
const CategoryUnknown = "Unknown"

// Playbook is the full review standard for a contract analysis run. The
// default playbook ships in this package; deployments can persist an
// edited copy and load it at bootstrap.
type Playbook struct {
	// Categories fixes the iteration order for keyword anchoring so
	// classification is deterministic.
	Categories []string

	// Library maps each category to its canonical standard text.
	Library map[string]string

	// Keywords maps each category to the anchor phrases whose presence
	// (case-insensitive) reliably signals that category.
	Keywords map[string][]string

	// GlobalGuidance applies to every clause regardless of category.
	GlobalGuidance string

	// SectionRules are category-specific rules layered on top of the
	// persona instructions.
	SectionRules map[string]string
}

// StandardText returns the canonical text for a category, or "" when the
// category is not in the library (e.g. a "(Cont.)" synthetic label).
func (p *Playbook) StandardText(category string) string {
	return p.Library[category]
}

// Default returns the built-in playbook.
func Default() *Playbook {
	return &Playbook{
		Categories: []string{
			"Indemnification",
			"Limitation of Liability",
			"Confidentiality",
			"Governing Law",
			"Intellectual Property",
			"Termination",
			"Warranties",
		},
		Library: map[string]string{
			"Indemnification":         "Each Party shall indemnify, defend, and hold harmless the other Party from and against any and all claims, damages, liabilities, costs, and expenses (including reasonable attorneys' fees) arising out of or related to: (a) its breach of any representation or warranty; or (b) its gross negligence or willful misconduct.",
			"Limitation of Liability": "EXCEPT FOR INDEMNIFICATION OBLIGATIONS OR BREACHES OF CONFIDENTIALITY, NEITHER PARTY SHALL BE LIABLE FOR ANY INDIRECT, SPECIAL, OR CONSEQUENTIAL DAMAGES. EACH PARTY'S TOTAL LIABILITY SHALL NOT EXCEED THE TOTAL FEES PAID OR PAYABLE UNDER THIS AGREEMENT IN THE 12 MONTHS PRECEDING THE CLAIM.",
			"Confidentiality":         "Recipient shall protect Discloser's Confidential Information with the same degree of care it uses to protect its own similar information, but not less than reasonable care. Recipient shall not disclose Confidential Information to any third party without Discloser's prior written consent.",
			"Governing Law":           "This Agreement shall be governed by and construed in accordance with the laws of the State of Delaware, without regard to its conflict of laws principles. Venue shall be in Delaware.",
			"Intellectual Property":   "Each Party retains all right, title, and interest in and to its Background IP. Any IP created solely by a Party in performance of this Agreement shall be owned by that Party.",
			"Termination":             "Either Party may terminate this Agreement for cause upon 30 days written notice of a material breach, provided such breach remains uncured. Either Party may terminate for convenience with 90 days prior written notice.",
			"Warranties":              "Provider represents and warrants that the Services will be performed in a professional and workmanlike manner in accordance with industry standards.",
		},
		Keywords: map[string][]string{
			"Indemnification":         {"indemnify", "indemnification", "hold harmless", "defense of claims"},
			"Limitation of Liability": {"limitation of liability", "total liability", "consequential damages", "cap on liability"},
			"Confidentiality":         {"confidential information", "non-disclosure", "proprietary information"},
			"Governing Law":           {"governing law", "jurisdiction", "venue", "laws of"},
			"Intellectual Property":   {"intellectual property", "ownership", "patent", "copyright", "work made for hire"},
			"Termination":             {"termination", "term and termination", "surrender"},
			"Warranties":              {"warranties", "disclaimer", "representations"},
		},
		GlobalGuidance: `1. Governing Law: Ensure the governing law is always New York or Delaware. Flag anything else.
2. Clarity: Prefer active voice. Break up run-on sentences longer than 4 lines.
3. Defined Terms: Ensure capitalized terms (e.g., "Services", "Data") are actually defined or standard.
4. Dates: Flag any hardcoded dates that have already passed.`,
		SectionRules: map[string]string{
			"Indemnification": `- We do NOT accept uncapped indemnification for "all claims."
- Limit to third-party claims only.
- Ensure mutual indemnification for IP infringement.`,
			"Limitation of Liability": `- Cap must not exceed 12 months of fees paid.
- Carve-outs are only acceptable for: Fraud, Gross Negligence, and Willful Misconduct.
- Reject 'Lost Profits' exclusions if they are direct damages.`,
			"Termination": `- We require at least 30 days' notice for termination for convenience.
- Ensure we have the right to retrieve data for 60 days post-termination.`,
			"Confidentiality": `- Definition must include "all business and technical information."
- Exceptions must include "independently developed" and "already known."
- Duration should be at least 3 years, or perpetual for trade secrets.`,
		},
	}
}

// DefaultPersonaName is the fallback persona every analysis resolves to
// when the requested persona does not exist.
const DefaultPersonaName = "General Counsel"

// DefaultPersonas are the built-in negotiation strategies seeded into the
// persona store at bootstrap.
func DefaultPersonas() map[string]string {
	return map[string]string{
		"General Counsel": "**ROLE**: Prudent, risk-averse General Counsel.\n" +
			"**STRATEGY**: Balance risk. Ensure no uncapped liability. Demand mutual indemnification. " +
			"Align with the Standard Playbook. Reject unusual one-sided terms.",
		"Buyer Advocate": "**ROLE**: BUYER'S Counsel.\n" +
			"**STRATEGY**: Aggressively push risk to Seller. Demand strict warranties and IP ownership.",
		"Seller Advocate": "**ROLE**: SELLER'S Counsel.\n" +
			"**STRATEGY**: Limit liability to fees paid. Disclaim all warranties. Protect IP.",
	}
}
