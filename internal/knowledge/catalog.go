package knowledge

// Agent is one product in the RCM agent suite.
type Agent struct {
	ID          string
	Name        string
	FullName    string
	Description string
	Benefits    []string
	UseCases    []string
	Keywords    []string
}

// Agents lists the suite in presentation order.
var Agents = []Agent{
	{
		ID:          "EVA",
		Name:        "Eligibility Verification Agent (EVA)",
		FullName:    "EVA - Eligibility Verification Agent",
		Description: "EVA automates the process of verifying a patient's eligibility and benefits information in real-time, eliminating manual data entry errors and reducing claim rejections.",
		Benefits: []string{
			"Real-time eligibility verification",
			"Eliminates manual data entry errors",
			"Reduces claim rejections by up to 75%",
			"Integrates with major payer portals",
			"Handles complex multi-payer scenarios",
		},
		UseCases: []string{
			"Patient check-in verification",
			"Pre-service eligibility checks",
			"Benefits verification",
			"Coverage confirmation",
		},
		Keywords: []string{"eligibility", "verification", "insurance", "benefits", "coverage", "patient"},
	},
	{
		ID:          "CAM",
		Name:        "Claims Processing Agent (CAM)",
		FullName:    "CAM - Claims Processing Agent",
		Description: "CAM streamlines the submission and management of claims, improving accuracy, reducing manual intervention, and accelerating reimbursements.",
		Benefits: []string{
			"Automated claims submission",
			"95%+ accuracy rate",
			"Reduces manual intervention by 90%",
			"Accelerates reimbursement cycles",
			"Intelligent error detection and correction",
			"Handles complex claim scenarios",
		},
		UseCases: []string{
			"Claims submission",
			"Claims status tracking",
			"Resubmission management",
			"Error correction automation",
		},
		Keywords: []string{"claims", "processing", "submission", "reimbursement", "billing"},
	},
	{
		ID:          "PHIL",
		Name:        "Payment Posting Agent (PHIL)",
		FullName:    "PHIL - Payment Posting Agent",
		Description: "PHIL automates the posting of payments to patient accounts, ensuring fast, accurate reconciliation of payments and reducing administrative burden.",
		Benefits: []string{
			"Automated payment posting",
			"Fast and accurate reconciliation",
			"Reduces administrative burden by 80%",
			"Handles EOBs and ERAs automatically",
			"Real-time payment tracking",
		},
		UseCases: []string{
			"Payment posting",
			"EOB processing",
			"Payment reconciliation",
			"Account balance updates",
		},
		Keywords: []string{"payment", "posting", "reconciliation", "phil", "accounts", "eob", "era"},
	},
	{
		ID:          "DANA",
		Name:        "Denial Management Agent (DANA)",
		FullName:    "DANA - Denial Management Agent",
		Description: "DANA intelligently manages claim denials, automatically identifies root causes, generates appeals, and resubmits claims to maximize revenue recovery.",
		Benefits: []string{
			"Automatic denial identification",
			"Root cause analysis",
			"Intelligent appeal generation",
			"Automated resubmission",
			"Reduces denials by 75%",
			"Tracks denial trends",
		},
		UseCases: []string{
			"Denial analysis",
			"Appeal letter generation",
			"Claim resubmission",
			"Denial trend reporting",
		},
		Keywords: []string{"denial", "appeals", "rejection", "dana", "resubmission"},
	},
	{
		ID:          "PREAUTH",
		Name:        "Prior Authorization Agent",
		FullName:    "Prior Authorization Agent",
		Description: "Automates the prior authorization process, reducing wait times from days to minutes and ensuring patients get timely care.",
		Benefits: []string{
			"Reduces authorization time by 95%",
			"Automated submission to payers",
			"Real-time status tracking",
			"Handles complex medical necessity documentation",
			"Reduces authorization delays",
		},
		UseCases: []string{
			"Prior authorization requests",
			"Medical necessity documentation",
			"Authorization status tracking",
			"Payer communication",
		},
		Keywords: []string{"prior authorization", "preauth", "authorization", "approval", "medical necessity"},
	},
	{
		ID:          "CODING",
		Name:        "Medical Coding Agent",
		FullName:    "Medical Coding Agent",
		Description: "AI-powered medical coding that ensures accuracy, compliance, and optimal reimbursement with automated CPT, ICD-10, and modifier assignment.",
		Benefits: []string{
			"99%+ coding accuracy",
			"Automatic CPT and ICD-10 assignment",
			"Compliance with latest guidelines",
			"Optimizes reimbursement",
			"Reduces coding backlogs",
		},
		UseCases: []string{
			"Medical record coding",
			"Procedure code assignment",
			"Diagnosis coding",
			"Modifier selection",
		},
		Keywords: []string{"coding", "medical coding", "cpt", "icd-10", "icd", "modifiers", "diagnosis"},
	},
}

// AgentByID returns the agent with the given id.
func AgentByID(id string) (Agent, bool) {
	for _, a := range Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// Company holds the company-level facts.
type Company struct {
	Description  string
	Mission      string
	Achievements []string
	Benefits     CompanyBenefits
	Platform     string
	Capabilities []string
	CustomerKind []string
	Customers    []string
}

// CompanyBenefits are the headline outcomes shown in the benefits reply.
type CompanyBenefits struct {
	CostSavings     string
	DenialReduction string
	Efficiency      string
	Accuracy        string
	Speed           string
	Scalability     string
}

// CompanyInfo is the company profile.
var CompanyInfo = Company{
	Description: "Thoughtful AI delivers the world's first AI operating system for healthcare Revenue Cycle Management (RCM) teams. Our fully human-capable AI Agents transform revenue cycle management end-to-end.",
	Mission:     "We're on a mission to fix the U.S. Healthcare System by cutting out the RCM bureaucracy and enabling providers to focus on what matters most: patient care.",
	Achievements: []string{
		"95%+ accuracy across all AI agents",
		"75% reduction in preventable claim denials",
		"95% reduction in operating expenses",
		"Trusted by leading healthcare providers nationwide",
		"Recent $20 million funding round",
	},
	Benefits: CompanyBenefits{
		CostSavings:     "Reduce RCM operating expenses by up to 95%",
		DenialReduction: "Cut preventable claim denials by 75%",
		Efficiency:      "Free up staff to focus on patient care instead of administrative tasks",
		Accuracy:        "Achieve 95%+ accuracy across all revenue cycle processes",
		Speed:           "Accelerate reimbursement cycles and cash flow",
		Scalability:     "Scale RCM capabilities without adding headcount",
	},
	Platform: "AI Operating System for Healthcare RCM",
	Capabilities: []string{
		"Fully autonomous AI agents",
		"Real-time reporting and analytics",
		"Predictive intelligence for denial prevention",
		"Seamless integration with existing systems",
		"Continuous learning and improvement",
	},
	CustomerKind: []string{
		"Hospital systems",
		"Medical practices",
		"Behavioral health organizations",
		"Specialty clinics",
		"Dental practices",
		"Therapy centers",
	},
	Customers: []string{
		"People's Care",
		"Behavioral Health Works",
		"Proliance Surgeons",
		"Ally Pediatric Therapy",
		"MB2 Dental",
		"Trumpet Behavioral Health",
	},
}

// Pattern is a canned conversation reply triggered by phrase containment.
// Exactly one of Response or Responses is set.
type Pattern struct {
	Intent    string
	Phrases   []string
	Response  string
	Responses []string
}

// Intent names for the canned conversation patterns.
const (
	IntentGreeting       = "greetings"
	IntentPricing        = "pricing"
	IntentDemo           = "demo"
	IntentIntegration    = "integration"
	IntentImplementation = "implementation"
	IntentComparison     = "comparison"
	IntentROI            = "roi"
)

// Patterns are checked in this order; the first hit wins.
var Patterns = []Pattern{
	{
		Intent:  IntentGreeting,
		Phrases: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"},
		Responses: []string{
			"Hello! I'm your Thoughtful AI support specialist. How can I help you today?",
			"Hi there! Welcome to Thoughtful AI. What can I assist you with?",
			"Good day! I'm here to help you learn about Thoughtful AI's healthcare automation solutions. What would you like to know?",
		},
	},
	{
		Intent:   IntentPricing,
		Phrases:  []string{"price", "cost", "pricing", "how much", "expensive", "afford", "budget"},
		Response: "Our pricing is customized based on your organization's size, needs, and current RCM volume. We offer flexible models including per-transaction pricing and subscription plans. I'd be happy to connect you with our sales team for a personalized quote. Would you like me to arrange that?",
	},
	{
		Intent:   IntentDemo,
		Phrases:  []string{"demo", "see it", "show me", "trial", "test", "try"},
		Response: "Great! We offer personalized demos tailored to your organization's specific needs. Our demos typically show real-world scenarios from your specialty and demonstrate ROI projections. Would you like to schedule a demo with our team?",
	},
	{
		Intent:   IntentIntegration,
		Phrases:  []string{"integrate", "integration", "connect", "ehr", "emr", "system", "software"},
		Response: "Our AI agents integrate seamlessly with major EHR/EMR systems, practice management platforms, and billing software. We support Epic, Cerner, Athenahealth, eClinicalWorks, and many others. The integration typically takes 2-4 weeks and doesn't require replacing your existing systems. What system are you currently using?",
	},
	{
		Intent:   IntentImplementation,
		Phrases:  []string{"implement", "setup", "onboard", "start", "begin", "deploy"},
		Response: "Implementation typically takes 4-8 weeks depending on your organization's complexity. Our process includes: system integration, agent configuration, staff training, pilot testing, and full deployment. We provide dedicated support throughout. What's your timeline for getting started?",
	},
	{
		Intent:   IntentComparison,
		Phrases:  []string{"vs", "versus", "compare", "difference", "better than", "alternative"},
		Response: "Unlike traditional RPA or task automation, our AI agents are fully autonomous and can handle complex decision-making, exceptions, and edge cases - just like human staff. They learn and improve over time, handle unstructured data, and adapt to changes without reprogramming. What specific comparison would you like to understand?",
	},
	{
		Intent:   IntentROI,
		Phrases:  []string{"roi", "return", "savings", "value", "worth it"},
		Response: "Organizations typically see 300-500% ROI within the first year through: 95% reduction in operating costs, 75% fewer denials, 50% faster reimbursements, and elimination of costly errors. Most clients achieve full payback in 3-6 months. Would you like a customized ROI analysis for your organization?",
	},
}

// ProductKeywords route a query to the product overview intent.
var ProductKeywords = []string{"all", "agents", "products", "suite", "platform"}
