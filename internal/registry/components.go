package registry

// Catalog lists the registered components. Prop keys are load-bearing:
// saved designs reference them by name.
func Catalog() []Component {
	return []Component{
		{
			Name:        "Button",
			DisplayName: "Button",
			Description: "Action button with variants and loading state.",
			ImportPath:  "components/ui/button",
			Props: map[string]Prop{
				"text":     {Type: TypeString, Default: "Submit", Description: "Button label."},
				"variant":  {Type: TypeChoice, Default: "primary", Options: []string{"primary", "secondary", "outline", "ghost", "destructive"}},
				"size":     {Type: TypeChoice, Default: "md", Options: []string{"sm", "md", "lg"}},
				"disabled": {Type: TypeBoolean, Default: false},
				"loading":  {Type: TypeBoolean, Default: false},
				"icon":     {Type: TypeSlot},
				"onClick":  {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "event", Type: "object"}}},
			},
		},
		{
			Name:        "DataTable",
			DisplayName: "Data Table",
			Description: "Paginated table bound to tabular data.",
			ImportPath:  "components/ui/data-table",
			Props: map[string]Prop{
				"data":          {Type: TypeObject, Description: "Row objects."},
				"columns":       {Type: TypeObject, Description: "Column definitions keyed by field."},
				"loading":       {Type: TypeBoolean, Default: false},
				"pageSize":      {Type: TypeNumber, Default: 10},
				"searchable":    {Type: TypeBoolean, Default: true},
				"emptyMessage":  {Type: TypeString, Default: "No records found"},
				"rowActions":    {Type: TypeSlot},
				"onRowClick":    {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "row", Type: "object"}, {Name: "index", Type: "number"}}},
				"onPageChange":  {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "page", Type: "number"}}},
				"getRowActions": {Type: TypeFunction, Description: "Returns the action set for one row."},
			},
		},
		{
			Name:        "Skeleton",
			DisplayName: "Skeleton",
			Description: "Loading placeholder.",
			ImportPath:  "components/ui/skeleton",
			Props: map[string]Prop{
				"rows":     {Type: TypeNumber, Default: 3},
				"animated": {Type: TypeBoolean, Default: true},
				"shape":    {Type: TypeChoice, Default: "line", Options: []string{"line", "circle", "card"}},
			},
		},
		{
			Name:        "Timeline",
			DisplayName: "Timeline",
			Description: "Ordered event list with markers.",
			ImportPath:  "components/ui/timeline",
			Props: map[string]Prop{
				"items":       {Type: TypeObject, Description: "Event entries with title, time and body."},
				"orientation": {Type: TypeChoice, Default: "vertical", Options: []string{"vertical", "horizontal"}},
				"reverse":     {Type: TypeBoolean, Default: false},
				"itemSlot":    {Type: TypeSlot},
				"onItemClick": {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "item", Type: "object"}}},
			},
		},
		{
			Name:        "SSOLogin",
			DisplayName: "SSO Login",
			Description: "Federated sign-in widget.",
			ImportPath:  "components/auth/sso-login",
			Props: map[string]Prop{
				"provider":   {Type: TypeChoice, Default: "microsoft", Options: []string{"microsoft", "phone", "email"}},
				"buttonText": {Type: TypeString, Default: "Sign in"},
				"logoUrl":    {Type: TypeString},
				"onSuccess":  {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "user", Type: "object"}, {Name: "token", Type: "string"}}},
				"onFailure":  {Type: TypeEventHandler, ArgTypes: []ArgType{{Name: "message", Type: "string"}}},
			},
		},
		{
			Name:        "Avatar",
			DisplayName: "Avatar",
			Description: "User initial or image avatar.",
			ImportPath:  "components/ui/avatar",
			Props: map[string]Prop{
				"name":     {Type: TypeString},
				"imageUrl": {Type: TypeString},
				"size":     {Type: TypeChoice, Default: "md", Options: []string{"sm", "md", "lg", "xl"}},
			},
		},
	}
}
