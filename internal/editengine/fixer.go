package editengine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// FastModelFor is the provider -> fast-model routing table the edit
// fixer uses, carried over verbatim from
// original_source/forge-agent/src/edit_fixer.rs. cmd/forgecode exposes no
// flag to override it.
var FastModelFor = map[string]string{
	"gemini":    "gemini-2.0-flash",
	"anthropic": "claude-3-5-haiku-20241022",
	"openai":    "gpt-4o-mini",
}

const (
	fixerCacheTTL      = 5 * time.Minute
	fixerCacheCapacity = 100

	// fixerContentHeadChars/TailChars cap how much of a large file is sent
	// to the fast model; files over fixerContentCapThreshold are cropped
	// to head+tail with the middle elided.
	fixerContentCapThreshold = 10000
	fixerContentHeadChars    = 8000
	fixerContentTailChars    = 2000
)

const fixerSystemPrompt = `You are a precise code-edit repair assistant. You will be given a file's ` +
	`content and an edit that failed to apply because its search text could not ` +
	`be found verbatim. Find the closest corresponding location and respond with ` +
	`strict JSON only, no prose, no markdown fences, matching exactly this shape:
{"search": "<exact substring of the file content>", "replace": "<its replacement>", "explanation": "<one sentence>", "no_changes_required": false}
If the intended change already appears to be present, set "no_changes_required" to true and leave "search"/"replace" empty.`

// FixerClient is the minimal provider surface the edit fixer needs: a
// single non-streaming completion call against a named (typically small,
// fast) model.
type FixerClient interface {
	Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}

// FixerResult is the fast model's structured repair proposal.
type FixerResult struct {
	Search            string `json:"search"`
	Replace           string `json:"replace"`
	Explanation       string `json:"explanation"`
	NoChangesRequired bool   `json:"no_changes_required"`
}

type fixerCacheEntry struct {
	result    FixerResult
	err       error
	expiresAt time.Time
}

// Fixer is the §4.6a self-correction fallback: when the three-tier match
// ladder exhausts itself, it asks a small/fast model to locate the edit,
// caching both positive and negative outcomes by a hash of the inputs.
type Fixer struct {
	client FixerClient
	mu     sync.Mutex
	cache  map[string]fixerCacheEntry
	order  []string // insertion order, for capacity eviction
}

// NewFixer wraps client in a TTL/capacity-bounded cache.
func NewFixer(client FixerClient) *Fixer {
	return &Fixer{client: client, cache: make(map[string]fixerCacheEntry)}
}

// Fix asks the fast model (selected by provider) to repair an edit that
// the match ladder could not locate in fileContent.
func (f *Fixer) Fix(ctx context.Context, provider, fileContent, oldStr, newStr string) (FixerResult, error) {
	key := cacheKey(fileContent, oldStr, newStr)

	f.mu.Lock()
	if entry, ok := f.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		f.mu.Unlock()
		return entry.result, entry.err
	}
	f.mu.Unlock()

	result, err := f.query(ctx, provider, fileContent, oldStr, newStr)

	f.mu.Lock()
	f.store(key, fixerCacheEntry{result: result, err: err, expiresAt: time.Now().Add(fixerCacheTTL)})
	f.mu.Unlock()

	return result, err
}

func (f *Fixer) store(key string, entry fixerCacheEntry) {
	if _, exists := f.cache[key]; !exists {
		f.order = append(f.order, key)
		if len(f.order) > fixerCacheCapacity {
			oldest := f.order[0]
			f.order = f.order[1:]
			delete(f.cache, oldest)
		}
	}
	f.cache[key] = entry
}

func (f *Fixer) query(ctx context.Context, provider, fileContent, oldStr, newStr string) (FixerResult, error) {
	model, ok := FastModelFor[provider]
	if !ok {
		return FixerResult{}, fmt.Errorf("editengine: no fast model configured for provider %q", provider)
	}

	userPrompt := fmt.Sprintf("File content:\n```\n%s\n```\n\nFailed search text:\n```\n%s\n```\n\nIntended replacement:\n```\n%s\n```\n",
		capContent(fileContent), oldStr, newStr)

	raw, err := f.client.Complete(ctx, model, fixerSystemPrompt, userPrompt)
	if err != nil {
		return FixerResult{}, fmt.Errorf("editengine: fixer model call: %w", err)
	}

	var result FixerResult
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &result); err != nil {
		return FixerResult{}, fmt.Errorf("editengine: fixer returned non-JSON response: %w", err)
	}
	if !result.NoChangesRequired && !strings.Contains(fileContent, result.Search) {
		return FixerResult{}, fmt.Errorf("editengine: fixer's proposed search text is not an exact substring of the file")
	}
	return result, nil
}

// capContent crops very large files to head+tail, matching the original's
// token-budget defense for the fixer prompt.
func capContent(content string) string {
	if len(content) <= fixerContentCapThreshold {
		return content
	}
	return content[:fixerContentHeadChars] + "\n...(truncated)...\n" + content[len(content)-fixerContentTailChars:]
}

// cleanJSONResponse strips markdown code fences a model sometimes wraps
// JSON in despite instructions not to.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func cacheKey(fileContent, oldStr, newStr string) string {
	h := sha256.New()
	h.Write([]byte(fileContent))
	h.Write([]byte{0})
	h.Write([]byte(oldStr))
	h.Write([]byte{0})
	h.Write([]byte(newStr))
	return hex.EncodeToString(h.Sum(nil))
}
