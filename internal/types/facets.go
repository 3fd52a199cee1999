package types

// FacetKind is one of the alternate views a configuration type can be
// used through. A catalog name like Справочники.Товары resolves to
// the manager facet, while Товары.СоздатьЭлемент() yields an object
// facet of the same underlying type.
type FacetKind int

const (
	FacetManager FacetKind = iota
	FacetObject
	FacetReference
	FacetSelection
	FacetMetadata
)

func (f FacetKind) String() string {
	switch f {
	case FacetManager:
		return "Менеджер"
	case FacetObject:
		return "Объект"
	case FacetReference:
		return "Ссылка"
	case FacetSelection:
		return "Выборка"
	default:
		return "Метаданные"
	}
}

// AvailableFacets returns the facets a configuration kind supports.
// Unknown kinds get the reference facet only.
func AvailableFacets(kind string) []FacetKind {
	switch kind {
	case "Справочник", "Документ", "ПланВидовХарактеристик":
		return []FacetKind{FacetManager, FacetObject, FacetReference, FacetSelection, FacetMetadata}
	case "РегистрСведений", "РегистрНакопления":
		return []FacetKind{FacetManager, FacetSelection, FacetMetadata}
	case "Перечисление":
		return []FacetKind{FacetManager, FacetReference, FacetMetadata}
	default:
		return []FacetKind{FacetReference}
	}
}

// WithFacet returns a copy of the resolution viewed through the given
// facet. The facet must be one of the available facets; otherwise the
// resolution is returned unchanged.
func (r TypeResolution) WithFacet(facet FacetKind) TypeResolution {
	for _, f := range r.AvailableFacets {
		if f == facet {
			active := facet
			r.ActiveFacet = &active
			return r
		}
	}
	return r
}

// ConfigurationType builds a known resolution for a configuration
// object with its facet set populated from the kind.
func ConfigurationType(kind, name string, facet FacetKind) TypeResolution {
	r := KnownType(Configuration{Kind: kind, TypeName: name})
	r.AvailableFacets = AvailableFacets(kind)
	return r.WithFacet(facet)
}
