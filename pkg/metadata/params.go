package metadata

// ParamSource identifies what a declared parameter slot resolves to at
// request time.
type ParamSource int

const (
	// SourceBody injects the parsed request body.
	SourceBody ParamSource = iota
	// SourceQuery injects the request query values.
	SourceQuery
	// SourceParams injects the matched URL parameters.
	SourceParams
	// SourceCookie injects the request-bound cookie accessor.
	SourceCookie
	// SourceRequest injects the raw *http.Request.
	SourceRequest
	// SourceResponse injects the http.ResponseWriter.
	SourceResponse
	// SourceError injects the HTTP error factory.
	SourceError
	// SourceContext injects the full request context.
	SourceContext
	// SourceSession injects a Session built for the named provider.
	SourceSession
	// SourceSecurityProvider injects the named security provider instance.
	SourceSecurityProvider
	// SourceRepository injects a repository handle for the declared entity.
	SourceRepository
	// SourceEmail injects the application mailer.
	SourceEmail
)

// RepositoryKind selects which repository flavor a SourceRepository slot
// resolves to.
type RepositoryKind int

const (
	// RepoStandard resolves to Connection.Repository.
	RepoStandard RepositoryKind = iota
	// RepoTree resolves to Connection.TreeRepository.
	RepoTree
	// RepoCustom resolves to a registered custom repository by name.
	RepoCustom
)

// ParamSlot declares one injectable parameter of a controller method.
// Index is the parameter's position in the method signature; the injector
// orders resolved values by it, not by registration order.
type ParamSlot struct {
	Name     string // provider name for session/security-provider slots
	Entity   string // entity or custom repository name for repository slots
	Index    int
	Source   ParamSource
	RepoKind RepositoryKind
}

// Param is a registration option declaring one parameter slot on a method.
type Param func(member string, target string, store *Store)

func slotParam(slot ParamSlot) Param {
	return func(member, target string, store *Store) {
		store.AppendParam(target, member, slot)
	}
}

// Body declares the parsed request body at the given parameter index.
func Body(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceBody})
}

// Query declares the request query values at the given parameter index.
func Query(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceQuery})
}

// Params declares the matched URL parameters at the given parameter index.
func Params(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceParams})
}

// Cookies declares the request cookie accessor at the given parameter index.
func Cookies(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceCookie})
}

// Request declares the raw *http.Request at the given parameter index.
func Request(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceRequest})
}

// Response declares the http.ResponseWriter at the given parameter index.
func Response(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceResponse})
}

// Errors declares the HTTP error factory at the given parameter index.
func Errors(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceError})
}

// Ctx declares the full request context at the given parameter index.
func Ctx(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceContext})
}

// Session declares a session for the named security provider at the given
// parameter index.
func Session(index int, provider string) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceSession, Name: provider})
}

// Provider declares the named security provider instance at the given
// parameter index.
func Provider(index int, name string) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceSecurityProvider, Name: name})
}

// Repository declares a repository for the given entity at the given
// parameter index.
func Repository(index int, entity string) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceRepository, Entity: entity, RepoKind: RepoStandard})
}

// TreeRepository declares a tree repository for the given entity at the given
// parameter index.
func TreeRepository(index int, entity string) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceRepository, Entity: entity, RepoKind: RepoTree})
}

// CustomRepository declares a registered custom repository by name at the
// given parameter index.
func CustomRepository(index int, name string) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceRepository, Entity: name, RepoKind: RepoCustom})
}

// Email declares the application mailer at the given parameter index.
func Email(index int) Param {
	return slotParam(ParamSlot{Index: index, Source: SourceEmail})
}
