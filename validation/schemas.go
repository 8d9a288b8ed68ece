package validation

// Schema names, one per mutating operation.
const (
	RegisterUser  = "register_user"
	UpdateUser    = "update_user"
	CreateProject = "create_project"
	UpdateProject = "update_project"
	CreateTag     = "create_tag"
	UpdateTag     = "update_tag"
	CreateTask    = "create_task"
	UpdateTask    = "update_task"
)

// Shared patterns. Ids are store-generated 24-char lowercase hex strings.
const (
	patternObjectID = `^[a-f0-9]{24}$`
	patternColor    = `^#[abcdef0-9]{6}$`
	patternDate     = `^\\d{4}-\\d{2}-\\d{2}$`
	patternHour     = `^([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`
	patternEmail    = `^\\w+([.-]?\\w+)*@\\w+([.-]?\\w+)*(\\.\\w{2,3})+$`
	patternPassword = `^[0-9a-zA-Z!?/@.\\-_=]{8,}$`
)

var schemaSources = map[string]string{
	RegisterUser: `{
		"type": "object",
		"properties": {
			"first_name": { "type": "string", "minLength": 1, "maxLength": 40 },
			"last_name": { "type": "string", "minLength": 1, "maxLength": 40 },
			"password": { "type": "string", "minLength": 8, "maxLength": 40, "pattern": "` + patternPassword + `" },
			"email": { "type": "string", "minLength": 6, "maxLength": 40, "pattern": "` + patternEmail + `" },
			"current_task_start_hour": { "type": "null" },
			"current_task_date": { "type": "null" },
			"current_task_desc": { "type": "null" }
		},
		"required": ["email", "password"],
		"additionalProperties": false
	}`,
	UpdateUser: `{
		"type": "object",
		"properties": {
			"first_name": { "type": "string", "maxLength": 40 },
			"last_name": { "type": "string", "maxLength": 40 },
			"current_password": { "type": "string" },
			"password": { "type": "string", "minLength": 8, "maxLength": 40, "pattern": "` + patternPassword + `" },
			"repeat_password": { "type": "string", "minLength": 8, "maxLength": 40, "pattern": "` + patternPassword + `" },
			"active": { "type": "boolean" },
			"admin": { "type": "boolean" },
			"current_task_start_hour": { "anyOf": [{ "type": "string", "pattern": "` + patternHour + `" }, { "type": "null" }] },
			"current_task_date": { "anyOf": [{ "type": "string", "pattern": "` + patternDate + `" }, { "type": "null" }] },
			"current_task_desc": { "anyOf": [{ "type": "string", "minLength": 1, "maxLength": 120 }, { "type": "null" }] }
		},
		"additionalProperties": false
	}`,
	CreateProject: `{
		"type": "object",
		"properties": {
			"name": { "type": "string", "minLength": 1, "maxLength": 40 },
			"color": { "type": "string", "pattern": "` + patternColor + `" }
		},
		"required": ["name", "color"],
		"additionalProperties": false
	}`,
	UpdateProject: `{
		"type": "object",
		"properties": {
			"name": { "type": "string", "minLength": 1, "maxLength": 40 },
			"color": { "type": "string", "pattern": "` + patternColor + `" },
			"add_members": { "type": "array", "items": { "type": "string", "pattern": "` + patternObjectID + `" } },
			"delete_members": { "type": "array", "items": { "type": "string", "pattern": "` + patternObjectID + `" } }
		},
		"additionalProperties": false
	}`,
	CreateTag: `{
		"type": "object",
		"properties": {
			"name": { "type": "string", "minLength": 1, "maxLength": 40 }
		},
		"required": ["name"],
		"additionalProperties": false
	}`,
	UpdateTag: `{
		"type": "object",
		"properties": {
			"name": { "type": "string", "minLength": 1, "maxLength": 40 }
		},
		"additionalProperties": false
	}`,
	CreateTask: `{
		"type": "object",
		"properties": {
			"desc": { "type": "string", "minLength": 1, "maxLength": 120 },
			"date": { "type": "string", "pattern": "` + patternDate + `" },
			"start_hour": { "type": "string", "pattern": "` + patternHour + `" },
			"end_hour": { "type": "string", "pattern": "` + patternHour + `" },
			"hour_value": { "type": "number", "minimum": 0 },
			"tags": { "type": "array", "items": { "type": "string", "pattern": "` + patternObjectID + `" } },
			"project": { "anyOf": [{ "type": "string", "pattern": "` + patternObjectID + `" }, { "type": "null" }] }
		},
		"required": ["desc", "date", "start_hour", "end_hour"],
		"additionalProperties": false
	}`,
	UpdateTask: `{
		"type": "object",
		"properties": {
			"desc": { "type": "string", "minLength": 1, "maxLength": 120 },
			"date": { "type": "string", "pattern": "` + patternDate + `" },
			"start_hour": { "type": "string", "pattern": "` + patternHour + `" },
			"end_hour": { "type": "string", "pattern": "` + patternHour + `" },
			"hour_value": { "type": "number", "minimum": 0 },
			"project": { "anyOf": [{ "type": "string", "pattern": "` + patternObjectID + `" }, { "type": "null" }] },
			"add_tags": { "type": "array", "items": { "type": "string", "pattern": "` + patternObjectID + `" } },
			"delete_tags": { "type": "array", "items": { "type": "string", "pattern": "` + patternObjectID + `" } }
		},
		"additionalProperties": false
	}`,
}
