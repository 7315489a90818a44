package hudu

import "fmt"

// Collection names accepted by the Client
const (
	Articles         = "articles"
	Assets           = "assets"
	AssetPasswords   = "asset_passwords"
	Companies        = "companies"
	AssetLayouts     = "asset_layouts"
	ActivityLogs     = "activity_logs"
	Folders          = "folders"
	Users            = "users"
	Procedures       = "procedures"
	ProcedureTasks   = "procedure_tasks"
	Networks         = "networks"
	PasswordFolders  = "password_folders"
	Uploads          = "uploads"
	Websites         = "websites"
	Vlans            = "vlans"
	VlanZones        = "vlan_zones"
	IPAddresses      = "ip_addresses"
	Relations        = "relations"
	Lists            = "lists"
	Groups           = "groups"
	MagicDash        = "magic_dash"
	Matchers         = "matchers"
	Expirations      = "expirations"
	Exports          = "exports"
	S3Exports        = "s3_exports"
	RackStorages     = "rack_storages"
	RackStorageItems = "rack_storage_items"
	PublicPhotos     = "public_photos"
)

// Procedure workflow actions
const (
	ActionKickoff            = "kickoff"
	ActionDuplicate          = "duplicate"
	ActionCreateFromTemplate = "create_from_template"
)

// Collection describes one REST collection. The envelope keys are fixed per
// collection and never derived from the name.
type Collection struct {
	Name     string
	Path     string
	Singular string
	Plural   string

	ListOnly   bool
	Deletable  bool
	Archivable bool
	Actions    []string
}

// SupportsAction reports whether action is a member-level PUT on this collection
func (c Collection) SupportsAction(action string) bool {
	for _, a := range c.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func crud(name, singular string) Collection {
	return Collection{Name: name, Path: "/" + name, Singular: singular, Plural: name, Deletable: true}
}

func listOnly(name string) Collection {
	return Collection{Name: name, Path: "/" + name, Plural: name, ListOnly: true}
}

var collections = func() map[string]Collection {
	table := []Collection{
		archivable(crud(Articles, "article")),
		archivable(crud(Assets, "asset")),
		archivable(crud(AssetPasswords, "asset_password")),
		{Name: Companies, Path: "/companies", Singular: "company", Plural: "companies", Archivable: true},
		{Name: AssetLayouts, Path: "/asset_layouts", Singular: "asset_layout", Plural: "asset_layouts"},
		listOnly(ActivityLogs),
		crud(Folders, "folder"),
		crud(Users, "user"),
		withActions(crud(Procedures, "procedure"), ActionKickoff, ActionDuplicate, ActionCreateFromTemplate),
		crud(ProcedureTasks, "procedure_task"),
		crud(Networks, "network"),
		crud(PasswordFolders, "password_folder"),
		crud(Uploads, "upload"),
		crud(Websites, "website"),
		crud(Vlans, "vlan"),
		crud(VlanZones, "vlan_zone"),
		crud(IPAddresses, "ip_address"),
		crud(Relations, "relation"),
		crud(Lists, "list"),
		crud(Groups, "group"),
		crud(MagicDash, "magic_dash"),
		crud(Matchers, "matcher"),
		listOnly(Expirations),
		listOnly(Exports),
		listOnly(S3Exports),
		crud(RackStorages, "rack_storage"),
		crud(RackStorageItems, "rack_storage_item"),
		crud(PublicPhotos, "public_photo"),
	}

	m := make(map[string]Collection, len(table))
	for _, c := range table {
		m[c.Name] = c
	}
	return m
}()

func archivable(c Collection) Collection {
	c.Archivable = true
	return c
}

func withActions(c Collection, actions ...string) Collection {
	c.Actions = actions
	return c
}

// LookupCollection returns the collection registered under name
func LookupCollection(name string) (Collection, error) {
	c, ok := collections[name]
	if !ok {
		return Collection{}, fmt.Errorf("unknown Hudu collection: %s", name)
	}
	return c, nil
}
