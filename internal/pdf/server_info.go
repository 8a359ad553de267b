package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acrofill/acrofill/internal/descriptions"
)

const (
	directoryCacheTTL     = 5 * time.Minute
	scanMaxDepth          = 5
	scanFileLimit         = 100
	scanTimeLimit         = 3 * time.Second
	serverInfoScanTimeout = 10 * time.Second
)

// DirectoryCache remembers directory listings for a fixed TTL and
// tracks which directories are being scanned right now, so concurrent
// server info requests never pile up behind the same slow scan.
type DirectoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*CacheEntry
	scanning map[string]bool
	ttl      time.Duration
}

// CacheEntry is one cached directory listing.
type CacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a cache whose entries expire after ttl.
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries:  make(map[string]*CacheEntry),
		scanning: make(map[string]bool),
		ttl:      ttl,
	}
}

// Get returns the cached listing for path, or nil once the entry has
// expired.
func (c *DirectoryCache) Get(path string) *CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry := c.entries[path]
	if entry == nil || time.Since(entry.lastUpdate) > c.ttl {
		return nil
	}
	return entry
}

// Set stores a fresh listing for path.
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &CacheEntry{
		files:      files,
		lastUpdate: time.Now(),
	}
}

// SetScanning marks or clears an in-flight scan of path.
func (c *DirectoryCache) SetScanning(path string, scanning bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scanning {
		c.scanning[path] = true
	} else {
		delete(c.scanning, path)
	}
}

// IsScanning reports whether path is currently being scanned.
func (c *DirectoryCache) IsScanning(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.scanning[path]
}

// LazyDirectoryScanner walks a directory tree under depth, count, and
// time budgets. It filters by extension only; opening each candidate
// would defeat the point of a bounded scan.
type LazyDirectoryScanner struct {
	maxDepth    int
	fileLimit   int
	timeLimit   time.Duration
	skipHidden  bool
	skipSymlink bool
}

// ScanResult is the outcome of one bounded directory scan.
type ScanResult struct {
	Files        []FileInfo
	ScanTime     time.Duration
	FilesScanned int
	Truncated    bool
}

// NewLazyDirectoryScanner creates a scanner limited to maxDepth levels,
// fileLimit results, and timeLimit wall time. A zero value disables the
// corresponding limit.
func NewLazyDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *LazyDirectoryScanner {
	return &LazyDirectoryScanner{
		maxDepth:    maxDepth,
		fileLimit:   fileLimit,
		timeLimit:   timeLimit,
		skipHidden:  true,
		skipSymlink: true,
	}
}

type scanJob struct {
	path  string
	depth int
}

// ScanDirectory walks the tree under root breadth first until a budget
// runs out. Cancellation surfaces as an error together with whatever
// was collected up to that point.
func (s *LazyDirectoryScanner) ScanDirectory(ctx context.Context, root string) (*ScanResult, error) {
	start := time.Now()
	result := &ScanResult{}
	visited := make(map[string]bool)

	queue := []scanJob{{path: root}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			result.ScanTime = time.Since(start)
			return result, err
		}

		job := queue[0]
		queue = queue[1:]

		if s.maxDepth > 0 && job.depth >= s.maxDepth {
			continue
		}
		if s.overBudget(result, start) {
			break
		}

		// Symlinked directories could loop the walk back on itself.
		realPath, err := filepath.EvalSymlinks(job.path)
		if err != nil || visited[realPath] {
			continue
		}
		visited[realPath] = true

		entries, err := os.ReadDir(job.path)
		if err != nil {
			continue // unreadable directory
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				result.ScanTime = time.Since(start)
				return result, err
			}
			result.FilesScanned++

			name := entry.Name()
			if s.skipHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if s.skipSymlink && entry.Type()&os.ModeSymlink != 0 {
				continue
			}

			entryPath := filepath.Join(job.path, name)
			if entry.IsDir() {
				queue = append(queue, scanJob{path: entryPath, depth: job.depth + 1})
				continue
			}
			if !hasPDFExtension(name) {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}
			result.Files = append(result.Files, FileInfo{
				Name:         name,
				Path:         entryPath,
				Size:         info.Size(),
				ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
			})
			if s.fileLimit > 0 && len(result.Files) >= s.fileLimit {
				result.Truncated = true
				result.ScanTime = time.Since(start)
				return result, nil
			}
		}
	}

	result.ScanTime = time.Since(start)
	return result, nil
}

// overBudget reports whether a count or time limit has been hit,
// marking the result truncated when so.
func (s *LazyDirectoryScanner) overBudget(result *ScanResult, start time.Time) bool {
	if s.fileLimit > 0 && len(result.Files) >= s.fileLimit {
		result.Truncated = true
		return true
	}
	if s.timeLimit > 0 && time.Since(start) > s.timeLimit {
		result.Truncated = true
		return true
	}
	return false
}

// PDFServerInfo assembles the server info response, keeping directory
// listings cached between requests.
type PDFServerInfo struct {
	cache   *DirectoryCache
	scanner *LazyDirectoryScanner
	service *Service
}

// NewPDFServerInfo creates a server info handler for the service.
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		cache:   NewDirectoryCache(directoryCacheTTL),
		scanner: NewLazyDirectoryScanner(scanMaxDepth, scanFileLimit, scanTimeLimit),
		service: service,
	}
}

// GetServerInfo reports the server configuration, the tool catalog,
// and the PDFs currently visible in the configured directory.
func (p *PDFServerInfo) GetServerInfo(ctx context.Context) (*PDFServerInfoResult, error) {
	directory := p.service.config.PDFDirectory

	return &PDFServerInfoResult{
		ServerName:        p.service.config.ServerName,
		Version:           p.service.config.Version,
		DefaultDirectory:  directory,
		OutputDirectory:   p.service.config.OutputDirectory,
		MaxFileSize:       p.service.config.MaxFileSize,
		AvailableTools:    p.getAvailableTools(),
		DirectoryContents: p.directoryContents(ctx, directory),
		UsageGuidance:     p.getUsageGuidance(),
	}, nil
}

// directoryContents returns the PDFs under dir, served from cache when
// fresh. A scan already in flight is not duplicated; the caller gets
// empty contents instead of blocking.
func (p *PDFServerInfo) directoryContents(ctx context.Context, dir string) []FileInfo {
	if cached := p.cache.Get(dir); cached != nil {
		return cached.files
	}
	if p.cache.IsScanning(dir) {
		return []FileInfo{}
	}

	p.cache.SetScanning(dir, true)
	defer p.cache.SetScanning(dir, false)

	scanCtx, cancel := context.WithTimeout(ctx, serverInfoScanTimeout)
	defer cancel()

	result, err := p.scanner.ScanDirectory(scanCtx, dir)
	if err != nil || result == nil {
		return []FileInfo{}
	}

	p.cache.Set(dir, result.Files)
	return result.Files
}

// getAvailableTools returns the list of available tools
func (p *PDFServerInfo) getAvailableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "pdf_extract_form_fields",
			Description: descriptions.GetToolDescription("pdf_extract_form_fields"),
			Usage: "Use this tool to list every fillable field of a PDF form, including the nearby " +
				"label text inferred for each field.",
			Parameters: "path (required): Full path to the PDF file (supports both absolute and relative paths)",
		},
		{
			Name:        "pdf_form_stats",
			Description: descriptions.GetToolDescription("pdf_form_stats"),
			Usage:       "Use this tool to get a quick overview of a form: field counts by type, labels, options.",
			Parameters:  "path (required): Full path to the PDF file (supports both absolute and relative paths)",
		},
		{
			Name:        "pdf_fill_form",
			Description: descriptions.GetToolDescription("pdf_fill_form"),
			Usage: "Use this tool to write known values into a form. Provide the values inline as a " +
				"JSON object or point at a mapping file produced earlier.",
			Parameters: "path (required): Full path to the PDF file, " +
				"mapping (optional): JSON object of field name to value, " +
				"mapping_path (optional): path to a mapping JSON file, " +
				"output_path (optional): where to write the filled PDF",
		},
		{
			Name:        "pdf_auto_fill_form",
			Description: descriptions.GetToolDescription("pdf_auto_fill_form"),
			Usage: "Use this tool to fill a form from a free-text source document. The server extracts " +
				"the fields, asks the language model for a field-to-value mapping, and writes the result.",
			Parameters: "path (required): Full path to the PDF file, " +
				"text_path (required): path to the text file with the source information, " +
				"mapping_path (optional): where to save the generated mapping, " +
				"output_path (optional): where to write the filled PDF",
		},
		{
			Name:        "pdf_describe_form_fields",
			Description: descriptions.GetToolDescription("pdf_describe_form_fields"),
			Usage: "Use this tool to generate a short natural-language description of what each form " +
				"field expects, based on the field properties and the document text.",
			Parameters: "path (required): Full path to the PDF file (supports both absolute and relative paths)",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Usage:       "Use this tool to check if a file is a valid PDF before attempting to process it.",
			Parameters:  "path (required): Full path to the PDF file (supports both absolute and relative paths)",
		},
		{
			Name:        "pdf_search_directory",
			Description: descriptions.GetToolDescription("pdf_search_directory"),
			Usage: "Use this tool to find PDF files in the default directory or any specified " +
				"directory. Supports fuzzy search by filename.",
			Parameters: "directory (optional): Directory path to search (uses the configured directory if empty), " +
				"query (optional): Search query for fuzzy matching",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Use this tool to get comprehensive server information and available capabilities.",
			Parameters:  "No parameters required",
		},
	}
}

// getUsageGuidance returns comprehensive usage guidance
func (p *PDFServerInfo) getUsageGuidance() string {
	maxFileSizeMB := p.service.config.MaxFileSize / (1024 * 1024)

	return fmt.Sprintf(`PDF Form Fill Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'pdf_search_directory' to find available PDF files
   - Use 'pdf_server_info' to get server capabilities and current directory contents

2. VALIDATE FILES:
   - Use 'pdf_validate_file' to check if a file is readable before processing

3. INSPECT THE FORM:
   - Use 'pdf_form_stats' for a quick overview (field counts by type, labels, options)
   - Use 'pdf_extract_form_fields' for the full catalog; each field carries:
     * "name": the exact key to use in a fill mapping
     * "type": text, checkbox, radio, select, pushbutton or signature
     * "context_text": nearby label text inferred from the page layout
     * "options": the permitted values for select and radio fields
   - Use 'pdf_describe_form_fields' when the field names and labels are cryptic

4. FILL THE FORM:
   - Use 'pdf_fill_form' when you already know the values; pass a JSON object
     keyed by the exact field names (booleans toggle checkboxes)
   - Use 'pdf_auto_fill_form' when the values live in a text document; the
     server maps text to fields with the configured language model
   - The original PDF is never modified; output goes to output_path or the
     configured output directory as '<name>_filled.pdf'

5. VERIFY THE RESULT:
   - Re-run 'pdf_extract_form_fields' on the filled PDF to confirm the values

PERFORMANCE OPTIMIZATIONS:
- Server info results are cached for 5 minutes to improve response times
- Directory scanning is limited to 100 files and 3 seconds to prevent timeouts
- Field extraction reads each page's text at most once per request

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to %dMB
- Filling requires the PDF to contain an interactive AcroForm; scanned forms
  without form fields cannot be filled
- 'pdf_auto_fill_form' needs a Gemini API key and 'pdf_describe_form_fields'
  an OpenAI API key configured on the server`, maxFileSizeMB)
}
