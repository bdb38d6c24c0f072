package initializers

import (
	"context"
	"fmt"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
)

// StarterProducts is the catalogue a fresh store is seeded with.
var StarterProducts = []models.Product{
	{
		Name:        models.LocalizedText{En: "Aashirvaad Whole Wheat Atta", Hi: "आशीर्वाद साबुत गेहूं आटा"},
		Description: models.LocalizedText{En: "100% whole wheat atta for soft rotis.", Hi: "नरम रोटियों के लिए 100% साबुत गेहूं का आटा।"},
		Price:       55,
		Category:    "Aata/Maida/Besan",
		Image:       "https://drive.google.com/uc?export=view&id=1Xy8cLG3Y5Fct5TZyE_gT-vLqfUeG8t_A",
		Unit:        models.UnitKilogram,
		Available:   true,
		DataAIHint:  "wheat flour",
	},
	{
		Name:        models.LocalizedText{En: "Tata Salt", Hi: "टाटा नमक"},
		Description: models.LocalizedText{En: "Iodized salt for everyday cooking.", Hi: "रोजमर्रा के खाना पकाने के लिए आयोडीन युक्त नमक।"},
		Price:       25,
		Category:    "Masala & Salt",
		Image:       "https://drive.google.com/uc?export=view&id=1pG4vB7gJ8bJkE-F4H-n9L1gQYdZ1zJ7o",
		Unit:        models.UnitKilogram,
		Available:   true,
		DataAIHint:  "salt packet",
	},
	{
		Name:        models.LocalizedText{En: "Parle-G Biscuits", Hi: "पारले-जी बिस्कुट"},
		Description: models.LocalizedText{En: "The original gluco-biscuit.", Hi: "ओरिजिनल ग्लूको-बिस्कुट।"},
		Price:       10,
		Category:    "Biscuits",
		Image:       "https://drive.google.com/uc?export=view&id=1tO7dF5jA8rL3gN1jV8wP5bO0oYdE0gGk",
		Unit:        models.UnitPiece,
		Available:   true,
		DataAIHint:  "biscuit packet",
	},
	{
		Name:        models.LocalizedText{En: "Cycle Agarbatti", Hi: "साइकिल अगरबत्ती"},
		Description: models.LocalizedText{En: "Popular brand of incense sticks for prayer.", Hi: "पूजा के लिए अगरबत्ती का लोकप्रिय ब्रांड।"},
		Price:       20,
		Category:    "Agarbatti",
		Image:       "https://drive.google.com/uc?export=view&id=1bJ8Z3nQ9YhP6tX2fA5wS6gD1kF0aL9jR",
		Unit:        models.UnitPiece,
		Available:   true,
		DataAIHint:  "incense sticks",
	},
	{
		Name:        models.LocalizedText{En: "Fortune Soyabean Oil", Hi: "फॉर्च्यून सोयाबीन तेल"},
		Description: models.LocalizedText{En: "Refined soyabean oil for cooking.", Hi: "खाना पकाने के लिए रिफाइंड सोयाबीन तेल।"},
		Price:       130,
		Category:    "Oil",
		Image:       "https://drive.google.com/uc?export=view&id=1zK-9k8fJ7vG5bL3sN4wA0jS8gT1dF0wR",
		Unit:        models.UnitLiter,
		Available:   true,
		DataAIHint:  "cooking oil",
	},
}

// SeedProducts inserts the starter catalogue. With skipIfPresent set it does
// nothing when the store already has products.
func SeedProducts(ctx context.Context, s store.ProductStore, skipIfPresent bool) (int, error) {
	if skipIfPresent {
		existing, err := s.ListProducts(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			return 0, nil
		}
	}
	for i := range StarterProducts {
		p := StarterProducts[i]
		if err := s.CreateProduct(ctx, &p); err != nil {
			return i, fmt.Errorf("seeding %q: %w", p.Name.En, err)
		}
	}
	return len(StarterProducts), nil
}
