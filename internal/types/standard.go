package types

import "strings"

// platformCollections lists the methods and properties the checker
// knows about for the common platform collection types. The catalog
// is intentionally small; anything absent resolves permissively.
var platformCollections = map[string]Platform{
	"Массив": {
		TypeName:   "Массив",
		Methods:    []string{"Добавить", "Вставить", "Удалить", "Количество", "Найти", "Очистить", "Получить"},
		Properties: nil,
	},
	"Соответствие": {
		TypeName:   "Соответствие",
		Methods:    []string{"Вставить", "Получить", "Удалить", "Количество", "Очистить"},
		Properties: nil,
	},
	"Структура": {
		TypeName:   "Структура",
		Methods:    []string{"Вставить", "Удалить", "Свойство", "Количество", "Очистить"},
		Properties: nil,
	},
	"ТаблицаЗначений": {
		TypeName:   "ТаблицаЗначений",
		Methods:    []string{"Добавить", "Удалить", "Количество", "Найти", "Свернуть", "Скопировать"},
		Properties: []string{"Колонки", "Индексы"},
	},
	"СписокЗначений": {
		TypeName:   "СписокЗначений",
		Methods:    []string{"Добавить", "Удалить", "Количество", "НайтиПоЗначению"},
		Properties: nil,
	},
}

// typeNameTable maps the names accepted by Тип("...") onto concrete
// types. Both Russian and English spellings are accepted.
var typeNameTable = map[string]ConcreteType{
	"строка":  Primitive{Kind: PrimitiveString},
	"string":  Primitive{Kind: PrimitiveString},
	"число":   Primitive{Kind: PrimitiveNumber},
	"number":  Primitive{Kind: PrimitiveNumber},
	"булево":  Primitive{Kind: PrimitiveBoolean},
	"boolean": Primitive{Kind: PrimitiveBoolean},
	"дата":    Primitive{Kind: PrimitiveDate},
	"date":    Primitive{Kind: PrimitiveDate},

	"массив":          Platform{TypeName: "Массив"},
	"array":           Platform{TypeName: "Массив"},
	"соответствие":    Platform{TypeName: "Соответствие"},
	"map":             Platform{TypeName: "Соответствие"},
	"структура":       Platform{TypeName: "Структура"},
	"structure":       Platform{TypeName: "Структура"},
	"таблицазначений": Platform{TypeName: "ТаблицаЗначений"},
	"valuetable":      Platform{TypeName: "ТаблицаЗначений"},

	"неопределено": Special{Kind: SpecialUndefined},
	"undefined":    Special{Kind: SpecialUndefined},
	"null":         Special{Kind: SpecialNull},
	"тип":          Special{Kind: SpecialType},
	"type":         Special{Kind: SpecialType},
}

// LookupTypeName resolves a type name as written inside Тип("...").
func LookupTypeName(name string) (ConcreteType, bool) {
	t, ok := typeNameTable[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// LookupPlatformType resolves a constructor name (Новый Имя) to a
// platform type with its known member catalog.
func LookupPlatformType(name string) (Platform, bool) {
	if p, ok := platformCollections[name]; ok {
		return p, true
	}
	if t, ok := typeNameTable[strings.ToLower(name)]; ok {
		if p, ok := t.(Platform); ok {
			return p, true
		}
	}
	return Platform{}, false
}

// globalFunctions catalogs platform global functions with their
// return primitive. ParamCount < 0 means variadic or unchecked.
var globalFunctions = map[string]GlobalFunction{
	"стрдлина":          {FunctionName: "СтрДлина", ReturnType: "Число", ParamCount: 1},
	"врег":              {FunctionName: "ВРег", ReturnType: "Строка", ParamCount: 1},
	"нрег":              {FunctionName: "НРег", ReturnType: "Строка", ParamCount: 1},
	"сокрлп":            {FunctionName: "СокрЛП", ReturnType: "Строка", ParamCount: 1},
	"строка":            {FunctionName: "Строка", ReturnType: "Строка", ParamCount: 1},
	"число":             {FunctionName: "Число", ReturnType: "Число", ParamCount: 1},
	"булево":            {FunctionName: "Булево", ReturnType: "Булево", ParamCount: 1},
	"дата":              {FunctionName: "Дата", ReturnType: "Дата", ParamCount: -1},
	"цел":               {FunctionName: "Цел", ReturnType: "Число", ParamCount: 1},
	"окр":               {FunctionName: "Окр", ReturnType: "Число", ParamCount: -1},
	"макс":              {FunctionName: "Макс", ReturnType: "Число", ParamCount: -1},
	"мин":               {FunctionName: "Мин", ReturnType: "Число", ParamCount: -1},
	"текущаядата":       {FunctionName: "ТекущаяДата", ReturnType: "Дата", ParamCount: 0},
	"типзнч":            {FunctionName: "ТипЗнч", ReturnType: "Тип", ParamCount: 1},
	"тип":               {FunctionName: "Тип", ReturnType: "Тип", ParamCount: 1},
	"найти":             {FunctionName: "Найти", ReturnType: "Число", ParamCount: 2},
	"стрнайти":          {FunctionName: "СтрНайти", ReturnType: "Число", ParamCount: -1},
	"стрзаменить":       {FunctionName: "СтрЗаменить", ReturnType: "Строка", ParamCount: 3},
	"значениезаполнено": {FunctionName: "ЗначениеЗаполнено", ReturnType: "Булево", ParamCount: 1},
}

// LookupGlobalFunction resolves a global platform function by name,
// case-insensitively.
func LookupGlobalFunction(name string) (GlobalFunction, bool) {
	fn, ok := globalFunctions[strings.ToLower(name)]
	return fn, ok
}

// ResolveReturnType maps the function's declared return type name to
// a resolution. Functions with no cataloged return stay dynamic.
func (f GlobalFunction) ResolveReturnType() TypeResolution {
	switch f.ReturnType {
	case "Строка":
		return KnownType(Primitive{Kind: PrimitiveString})
	case "Число":
		return KnownType(Primitive{Kind: PrimitiveNumber})
	case "Булево":
		return KnownType(Primitive{Kind: PrimitiveBoolean})
	case "Дата":
		return KnownType(Primitive{Kind: PrimitiveDate})
	case "Тип":
		return KnownType(Special{Kind: SpecialType})
	default:
		return UnknownType()
	}
}

// NewPrimitive builds a known resolution for a primitive kind.
func NewPrimitive(kind PrimitiveKind) TypeResolution {
	return KnownType(Primitive{Kind: kind})
}

// NewSpecial builds a known resolution for a special kind.
func NewSpecial(kind SpecialKind) TypeResolution {
	return KnownType(Special{Kind: kind})
}

// NewPlatform builds a known resolution for a platform type, with its
// member catalog filled in when the type is cataloged.
func NewPlatform(name string) TypeResolution {
	if p, ok := LookupPlatformType(name); ok {
		return KnownType(p)
	}
	return KnownType(Platform{TypeName: name})
}

// IsNumber reports whether the resolution is concretely the numeric
// primitive.
func (r TypeResolution) IsNumber() bool { return r.isPrimitiveKind(PrimitiveNumber) }

// IsString reports whether the resolution is concretely the string
// primitive.
func (r TypeResolution) IsString() bool { return r.isPrimitiveKind(PrimitiveString) }

// IsBoolean reports whether the resolution is concretely boolean.
func (r TypeResolution) IsBoolean() bool { return r.isPrimitiveKind(PrimitiveBoolean) }

// IsDate reports whether the resolution is concretely a date.
func (r TypeResolution) IsDate() bool { return r.isPrimitiveKind(PrimitiveDate) }

// IsUndefined reports whether the resolution is the Неопределено
// value type.
func (r TypeResolution) IsUndefined() bool { return r.isSpecialKind(SpecialUndefined) }

// IsNull reports whether the resolution is the Null value type.
func (r TypeResolution) IsNull() bool { return r.isSpecialKind(SpecialNull) }

// IsArray reports whether the resolution is the Массив platform type.
func (r TypeResolution) IsArray() bool { return r.isPlatformNamed("Массив") }

// IsStructure reports whether the resolution is the Структура
// platform type.
func (r TypeResolution) IsStructure() bool { return r.isPlatformNamed("Структура") }

// IsMap reports whether the resolution is the Соответствие platform
// type.
func (r TypeResolution) IsMap() bool { return r.isPlatformNamed("Соответствие") }

func (r TypeResolution) isPrimitiveKind(kind PrimitiveKind) bool {
	concrete, ok := r.ConcreteType()
	if !ok {
		return false
	}
	p, ok := concrete.(Primitive)
	return ok && p.Kind == kind
}

func (r TypeResolution) isSpecialKind(kind SpecialKind) bool {
	concrete, ok := r.ConcreteType()
	if !ok {
		return false
	}
	s, ok := concrete.(Special)
	return ok && s.Kind == kind
}

func (r TypeResolution) isPlatformNamed(name string) bool {
	concrete, ok := r.ConcreteType()
	if !ok {
		return false
	}
	p, ok := concrete.(Platform)
	return ok && p.TypeName == name
}

// ResolveReturnTypeWith resolves the return type of a polymorphic
// builtin from its argument types. Макс and Мин return whatever type
// their arguments agree on; everything else falls back to the
// cataloged return type.
func (f GlobalFunction) ResolveReturnTypeWith(args []TypeResolution) TypeResolution {
	switch strings.ToLower(f.FunctionName) {
	case "макс", "мин":
		if len(args) == 0 {
			return f.ResolveReturnType()
		}
		return CreateUnion(args)
	default:
		return f.ResolveReturnType()
	}
}
