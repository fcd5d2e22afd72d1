package festival

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

func day(year int, month time.Month, d int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: d}
}

// SriLankaCatalogue returns the curated Sri Lankan festival calendar for 2026.
func SriLankaCatalogue() []CreateRequest {
	return []CreateRequest{
		{
			Name:                 "Esala Perahera",
			Location:             "Kandy",
			StartDate:            day(2026, 7, 25),
			EndDate:              day(2026, 8, 5),
			Type:                 TypeOutdoor,
			Description:          "The Esala Perahera is the grand festival of Esala held in Sri Lanka. It is one of the oldest and grandest of all Buddhist festivals in Sri Lanka.",
			CulturalSignificance: "Features a grand procession with traditional dancers, drummers, and decorated elephants. The sacred tooth relic of Buddha is paraded through the streets.",
		},
		{
			Name:                 "Vesak",
			Location:             "Nationwide",
			StartDate:            day(2026, 5, 15),
			EndDate:              day(2026, 5, 17),
			Type:                 TypeReligious,
			Description:          "Vesak commemorates the birth, enlightenment, and death of Buddha.",
			CulturalSignificance: "Celebrated with lanterns, decorations, dansalas (free food stalls), and religious observances. Streets are illuminated with colorful lanterns.",
		},
		{
			Name:                 "Poson",
			Location:             "Anuradhapura, Mihintale",
			StartDate:            day(2026, 6, 13),
			EndDate:              day(2026, 6, 15),
			Type:                 TypeReligious,
			Description:          "Poson commemorates the introduction of Buddhism to Sri Lanka.",
			CulturalSignificance: "Pilgrims climb Mihintale mountain. Religious observances and processions mark this important Buddhist festival.",
		},
		{
			Name:                 "Sinhala and Tamil New Year",
			Location:             "Nationwide",
			StartDate:            day(2026, 4, 13),
			EndDate:              day(2026, 4, 14),
			Type:                 TypeCultural,
			Description:          "Traditional New Year celebrated by both Sinhalese and Tamil communities.",
			CulturalSignificance: "Families gather for traditional games, rituals, and special foods. Marks the end of harvest season.",
		},
		{
			Name:                 "Thai Pongal",
			Location:             "Northern and Eastern Provinces",
			StartDate:            day(2026, 1, 14),
			EndDate:              day(2026, 1, 15),
			Type:                 TypeCultural,
			Description:          "Tamil harvest festival dedicated to the Sun God.",
			CulturalSignificance: "Traditional dish 'Pongal' is prepared. Homes are decorated with kolam (rice flour designs).",
		},
		{
			Name:                 "Deepavali",
			Location:             "Nationwide (Tamil communities)",
			StartDate:            day(2026, 10, 29),
			EndDate:              day(2026, 10, 30),
			Type:                 TypeReligious,
			Description:          "Festival of Lights celebrated by Hindus.",
			CulturalSignificance: "Homes are lit with oil lamps, fireworks are displayed, and sweets are shared among families.",
		},
		{
			Name:                 "Nallur Festival",
			Location:             "Jaffna",
			StartDate:            day(2026, 8, 10),
			EndDate:              day(2026, 8, 31),
			Type:                 TypeOutdoor,
			Description:          "Annual Hindu festival at Nallur Kandaswamy Temple.",
			CulturalSignificance: "25-day festival featuring chariot processions, traditional music, and religious ceremonies.",
		},
		{
			Name:                 "Christmas",
			Location:             "Nationwide",
			StartDate:            day(2026, 12, 25),
			EndDate:              day(2026, 12, 26),
			Type:                 TypeReligious,
			Description:          "Christian celebration of the birth of Jesus Christ.",
			CulturalSignificance: "Churches hold midnight masses, homes are decorated, and traditional Christmas cakes are prepared.",
		},
		{
			Name:                 "Kandy Perahera",
			Location:             "Kandy",
			StartDate:            day(2026, 7, 25),
			EndDate:              day(2026, 8, 5),
			Type:                 TypeOutdoor,
			Description:          "Grand cultural pageant featuring elephants, dancers, and drummers.",
			CulturalSignificance: "One of Asia's most spectacular cultural events, showcasing Sri Lankan traditional arts.",
		},
		{
			Name:                 "Duruthu Perahera",
			Location:             "Kelaniya",
			StartDate:            day(2026, 1, 10),
			EndDate:              day(2026, 1, 12),
			Type:                 TypeOutdoor,
			Description:          "Buddhist festival at Kelaniya Raja Maha Vihara.",
			CulturalSignificance: "Commemorates Buddha's first visit to Sri Lanka. Features a grand procession.",
		},
	}
}

// Seed creates every item unless the store already holds active festivals.
// It returns the number of festivals created.
func (s *Service) Seed(ctx context.Context, items []CreateRequest) (int, error) {
	existing, err := s.repo.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("checking existing festivals: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info().Msg("festivals already present, skipping seed")
		return 0, nil
	}

	for i := range items {
		if _, err := s.Create(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("seeding %q: %w", items[i].Name, err)
		}
	}

	s.logger.Info().Int("count", len(items)).Msg("seeded festivals")
	return len(items), nil
}
