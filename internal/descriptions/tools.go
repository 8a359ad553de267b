package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Form Inspection Tools
	PDFExtractFormFieldsDescription = `Extract the complete fillable field catalog from PDF forms.

**When to use:** Need to know which fields a form has, what each field is called, and what kind of value it accepts before filling it.

**Why it's useful:** Returns exact field names to key a fill mapping by, field types, permitted options, and the label text found near each field on the page.

**Examples:**
• Prepare a fill: "Extract fields from tax-form.pdf to see what information it needs"
• Understand cryptic forms: "List the fields of application.pdf with their nearby labels"
• Audit a template: "Get the field catalog of onboarding-template.pdf including required flags"

**Common workflows:**
1. Form Filling: Extract fields → Build mapping keyed by field names → Fill form → Verify result
2. Form Review: Extract fields → Check context_text for each → Identify ambiguous fields
3. Template Audit: Extract fields → Compare against expected schema → Flag missing fields

**Best practices:** Use the "name" value of each field verbatim as the mapping key; "context_text" carries the label text inferred from the page layout when field names are cryptic.`

	PDFFormStatsDescription = `Get summary statistics about the form fields of a PDF document.

**When to use:** Need a quick overview of a form's size and shape before committing to a full extraction or fill.

**Why it's useful:** Reports field counts by type, how many fields have nearby labels, option counts, and document metadata in one cheap call.

**Examples:**
• Quick triage: "Check form-stats of enrollment.pdf to see if it has fillable fields at all"
• Complexity estimate: "Get stats on contract.pdf to count text fields versus checkboxes"
• Label coverage: "See how many fields of scan-form.pdf carry inferred labels"

**Common workflows:**
1. Triage: Get stats → Skip documents without fields → Extract the rest
2. Planning: Check field counts → Estimate mapping effort → Choose manual or automatic fill
3. Quality Check: Review labeled versus unlabeled counts → Decide if descriptions are needed

**Best practices:** A document with zero total fields cannot be filled; run this before pdf_fill_form on unknown documents.`

	// Form Filling Tools
	PDFFillFormDescription = `Write values into the form fields of a PDF and save the result as a new document.

**When to use:** You already know the values for the fields and want them written into the form.

**Why it's useful:** Fills text fields, checkboxes, radio buttons, and choice fields in one pass; the original file is never modified.

**Examples:**
• Direct fill: "Fill employee-form.pdf with name, date, and department values"
• Checkbox handling: "Set subscribe to true and terms_accepted to true in signup.pdf"
• Saved mapping: "Fill invoice-template.pdf from the mapping file generated last run"

**Common workflows:**
1. Known Values: Extract fields → Build mapping inline → Fill → Re-extract output to verify
2. Repeated Fills: Save a mapping file once → Fill many copies from the same mapping
3. Corrections: Fill → Review output → Adjust mapping → Fill again

**Best practices:** Key the mapping by the exact field names from pdf_extract_form_fields; booleans toggle checkboxes, strings go into text and choice fields.`

	PDFAutoFillFormDescription = `Fill a PDF form automatically from a plain-text source document using a language model.

**When to use:** The values live in unstructured text (an email, a data sheet, case notes) and building the mapping by hand is impractical.

**Why it's useful:** Extracts the fields, asks the configured model to pull a value for each field out of the text, saves the generated mapping for review, and writes the filled document.

**Examples:**
• Intake automation: "Auto-fill patient-intake.pdf from referral-letter.txt"
• Data sheet transfer: "Fill vendor-form.pdf using the details in company-profile.txt"
• Case processing: "Auto-fill claim-form.pdf from the adjuster's notes file"

**Common workflows:**
1. Automatic Fill: Provide PDF and text file → Review generated mapping → Verify filled output
2. Assisted Fill: Auto-fill once → Correct the saved mapping → Re-run pdf_fill_form with it
3. Batch Intake: Auto-fill each document → Collect mappings → Audit low-confidence values

**Best practices:** Requires a Gemini API key configured on the server; the generated mapping is saved as JSON next to the output so every value can be audited.`

	PDFDescribeFormFieldsDescription = `Generate a natural-language description of what each form field expects.

**When to use:** Field names and labels are cryptic (f1_07, untitled3) and you need to understand what to put in each field.

**Why it's useful:** Combines field properties, nearby label text, and the document text into a short model-written explanation per field.

**Examples:**
• Cryptic forms: "Describe the fields of irs-w9.pdf so I know what each box means"
• Form documentation: "Generate field descriptions for loan-application.pdf for the ops runbook"
• Pre-fill review: "Describe benefits-form.pdf fields before mapping values to them"

**Common workflows:**
1. Understanding: Extract fields → Describe fields → Build mapping with confidence
2. Documentation: Describe fields → Store explanations → Share with form users
3. Disambiguation: Describe fields → Resolve ambiguous ones manually → Fill

**Best practices:** Requires an OpenAI API key configured on the server; descriptions come back attached to each field in the result.`

	// Utility Tools
	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to extract or fill any PDF file, especially in automated workflows or when handling user uploads.

**Why it's useful:** Prevents processing errors, identifies corrupted files early, and ensures compatibility with the form tools.

**Examples:**
• Batch processing safety: "Validate all PDFs in /forms/ before bulk extraction"
• Upload verification: "Check user-uploaded contract.pdf is valid before processing"
• Quality control: "Verify filled-report.pdf is readable before sending to client"

**Common workflows:**
1. Automated Processing: Validate → Process if valid → Handle errors gracefully
2. File Quality Check: Validate → Report issues → Fix or reject bad files
3. Pre-processing Pipeline: Validate → Route to appropriate tool

**Best practices:** Always run this first in automated workflows, essential for production systems handling unknown PDFs.`

	PDFSearchDirectoryDescription = `Discover and filter PDF files across directories with intelligent search.

**When to use:** Need to find specific PDFs by name patterns, explore unknown directories, or build file inventories.

**Why it's useful:** Quickly locates relevant documents without manual browsing, supports fuzzy matching for partial names.

**Examples:**
• Find forms: "Search /documents/ for files containing 'application' or '2024'"
• Locate templates: "Find all PDF files with 'intake' in /forms/ directory"
• Inventory building: "List all PDFs in /archive/ to understand content scope"

**Common workflows:**
1. Targeted Processing: Search for specific patterns → Validate matching files → Fill in sequence
2. Content Discovery: Explore directory → Identify form templates → Plan filling strategy
3. Batch Operations: Find files → Extract fields from each → Process results

**Best practices:** Use fuzzy search for partial matches; an empty directory argument searches the configured default directory.`

	PDFServerInfoDescription = `Get real-time server status, available tools, and system capabilities.

**When to use:** Starting work with the form server, troubleshooting issues, or checking available functionality.

**Why it's useful:** Provides complete overview of server capabilities, current configuration, directory contents, and a usage guide for the form workflow.

**Examples:**
• System check: "Verify server is ready and all tools are available before batch filling"
• Troubleshooting: "Check server info to diagnose why files aren't being found"
• Capability discovery: "See all available tools and their descriptions for new projects"

**Common workflows:**
1. Session Startup: Check server info → Verify capabilities → Plan processing approach
2. Debugging: Review server status → Check directory paths → Verify tool availability
3. Planning: Review available tools → Choose appropriate methods → Execute workflow

**Best practices:** Run at start of sessions, provides cached directory contents for quick overview.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"pdf_extract_form_fields":  PDFExtractFormFieldsDescription,
	"pdf_form_stats":           PDFFormStatsDescription,
	"pdf_fill_form":            PDFFillFormDescription,
	"pdf_auto_fill_form":       PDFAutoFillFormDescription,
	"pdf_describe_form_fields": PDFDescribeFormFieldsDescription,
	"pdf_validate_file":        PDFValidateFileDescription,
	"pdf_search_directory":     PDFSearchDirectoryDescription,
	"pdf_server_info":          PDFServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
