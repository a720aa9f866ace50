package usecase

import (
	"fmt"
	"log"
	"strings"

	kbdomain "supportmail-backend/internal/knowledge/domain"
	"supportmail-backend/internal/knowledge/repository"
)

// NoMatchMarker is emitted when no knowledge entry matches a message, so the
// response prompt can state explicitly that nothing relevant was found.
const NoMatchMarker = "No relevant knowledge base entries found."

// KnowledgeUsecase exposes the knowledge base to the pipeline and to the
// operator maintenance API
type KnowledgeUsecase interface {
	// GetAll returns all entries grouped by category
	GetAll() (map[kbdomain.Category]map[string]string, error)
	// Set creates or updates one entry
	Set(category kbdomain.Category, key, value string) (*kbdomain.Entry, error)
	// BuildContext assembles the knowledge context for one message
	BuildContext(subject, body string) string
}

// knowledgeUsecase implements KnowledgeUsecase interface
type knowledgeUsecase struct {
	entryRepo repository.EntryRepository
}

// NewKnowledgeUsecase creates a new instance of knowledgeUsecase
func NewKnowledgeUsecase(entryRepo repository.EntryRepository) KnowledgeUsecase {
	return &knowledgeUsecase{entryRepo: entryRepo}
}

func (u *knowledgeUsecase) GetAll() (map[kbdomain.Category]map[string]string, error) {
	entries, err := u.entryRepo.GetAll()
	if err != nil {
		return nil, err
	}

	result := make(map[kbdomain.Category]map[string]string)
	for _, cat := range kbdomain.Categories() {
		result[cat] = map[string]string{}
	}
	for _, entry := range entries {
		if _, ok := result[entry.Category]; !ok {
			result[entry.Category] = map[string]string{}
		}
		result[entry.Category][entry.Key] = entry.Value
	}
	return result, nil
}

func (u *knowledgeUsecase) Set(category kbdomain.Category, key, value string) (*kbdomain.Entry, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown knowledge category: %s", category)
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("knowledge key must not be empty")
	}
	return u.entryRepo.Upsert(category, key, value)
}

// BuildContext scans the lower-cased subject+body for knowledge keys across
// all categories and concatenates the matched snippets. Matching is plain
// substring containment with underscore-to-space normalization; over-matching
// on common words is accepted rather than guessing at stricter rules.
func (u *knowledgeUsecase) BuildContext(subject, body string) string {
	text := strings.ToLower(subject + " " + body)

	var matched []string
	for _, cat := range kbdomain.Categories() {
		entries, err := u.entryRepo.GetByCategory(cat)
		if err != nil {
			log.Printf("[Knowledge] Failed to load %s entries: %v", cat, err)
			continue
		}
		for _, entry := range entries {
			key := strings.ToLower(entry.Key)
			normalized := strings.ReplaceAll(key, "_", " ")
			if strings.Contains(text, key) || strings.Contains(text, normalized) {
				matched = append(matched, fmt.Sprintf("%s: %s", normalized, entry.Value))
			}
		}
	}

	if len(matched) == 0 {
		return NoMatchMarker
	}
	return strings.Join(matched, "\n")
}

// defaultEntries is the starter knowledge base seeded on first boot
var defaultEntries = map[kbdomain.Category]map[string]string{
	kbdomain.CategoryProducts: {
		"starter_plan": "The Starter plan includes one workspace, email support and a 14-day free trial.",
		"pro_plan":     "The Pro plan includes unlimited workspaces, priority support and API access.",
		"mobile_app":   "The mobile app is available for iOS and Android and syncs with the web workspace.",
	},
	kbdomain.CategoryPolicies: {
		"refund_policy":  "Refunds are available within 30 days of purchase. Processing takes 5-7 business days.",
		"billing_cycle":  "Subscriptions renew automatically on the monthly anniversary of signup. Invoices are emailed on renewal.",
		"privacy_policy": "Customer data is never shared with third parties and can be exported or deleted on request.",
		"cancellation":   "Subscriptions can be cancelled at any time from the account settings page; access continues until the end of the paid period.",
	},
	kbdomain.CategoryCommonIssues: {
		"password_reset": "Passwords can be reset from the login page via the 'Forgot password' link. Reset emails can take a few minutes to arrive.",
		"login_issue":    "Most login problems are resolved by clearing browser cookies or resetting the password.",
		"sync_issue":     "If data is not syncing, sign out and back in on all devices. Sync can lag a few minutes under load.",
	},
}

// SeedDefaults inserts the starter entries when the knowledge base is empty.
// Existing entries are never overwritten.
func SeedDefaults(entryRepo repository.EntryRepository) error {
	count, err := entryRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeded := 0
	for cat, entries := range defaultEntries {
		for key, value := range entries {
			if _, err := entryRepo.Upsert(cat, key, value); err != nil {
				return fmt.Errorf("seed %s/%s: %w", cat, key, err)
			}
			seeded++
		}
	}
	log.Printf("[Knowledge] Seeded %d default entries", seeded)
	return nil
}
