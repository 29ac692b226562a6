package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/petermazzocco/interior-admin/models"
)

// Payload fields tagged with record:"..." fill the matching Record slot;
// all other fields end up in Record.Fields under their json name.

type designPayload struct {
	Title       string            `json:"title" record:"title" validate:"required,max=200"`
	Category    string            `json:"category" record:"category" validate:"required,design_category"`
	Type        string            `json:"type" validate:"required,design_type"`
	Description string            `json:"description"`
	Features    []string          `json:"features" validate:"omitempty,dive,required"`
	YtURL       string            `json:"ytUrl" validate:"omitempty,url"`
	Images      []models.ImageRef `json:"images" record:"images" validate:"max=10"`
}

type projectPayload struct {
	Name         string            `json:"name" record:"title" validate:"required,max=200"`
	Designer     string            `json:"designer" validate:"required"`
	Area         string            `json:"area" validate:"required"`
	PropertyType string            `json:"propertyType" record:"category" validate:"required"`
	Timeline     string            `json:"timeline" validate:"required"`
	Location     string            `json:"location" record:"location" validate:"required"`
	CaseBrief    string            `json:"caseBrief"`
	Images       []models.ImageRef `json:"images" record:"images" validate:"max=4"`
}

type accountPayload struct {
	Email string `json:"email" record:"title" validate:"required,email"`
	City  string `json:"city" record:"location" validate:"required"`
}

func (accountPayload) finish(rec *models.Record) {
	rec.Title = models.NormalizeEmail(rec.Title)
	rec.Role = string(models.RoleAdmin)
}

func (accountPayload) finishPatch(p *models.Patch) {
	if p.Title != nil {
		email := models.NormalizeEmail(*p.Title)
		p.Title = &email
	}
}

type blogPayload struct {
	Title           string            `json:"title" record:"title" validate:"required,max=300"`
	Category        string            `json:"category" record:"category"`
	Author          string            `json:"author"`
	Date            string            `json:"date"`
	Content         string            `json:"content"`
	Excerpt         string            `json:"excerpt"`
	Slug            string            `json:"slug" validate:"omitempty,max=200"`
	MetaDescription string            `json:"metaDescription"`
	MetaKeywords    []string          `json:"metaKeywords"`
	OgTitle         string            `json:"ogTitle"`
	OgDescription   string            `json:"ogDescription"`
	OgImage         string            `json:"ogImage" validate:"omitempty,url"`
	Published       bool              `json:"published"`
	ReadingTime     string            `json:"readingTime"`
	Images          []models.ImageRef `json:"images" record:"images" validate:"max=1"`
}

type userPayload struct {
	Name         string `json:"name" record:"title" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	PropertyType string `json:"propertyType" record:"category"`
	Location     string `json:"location" record:"location" validate:"required"`
}

func (userPayload) finish(rec *models.Record) {
	rec.Role = string(models.RoleUser)
}

type recordFinisher interface {
	finish(rec *models.Record)
}

type patchFinisher interface {
	finishPatch(p *models.Patch)
}

func newPayload(kind models.Kind) (any, error) {
	switch kind {
	case models.KindDesigns:
		return &designPayload{}, nil
	case models.KindProjects:
		return &projectPayload{}, nil
	case models.KindAdmins, models.KindPartners:
		return &accountPayload{}, nil
	case models.KindBlogs:
		return &blogPayload{}, nil
	case models.KindUsers:
		return &userPayload{}, nil
	}
	return nil, models.ValidationError("Unknown collection %q.", kind)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return jsonName(f)
	})
	_ = v.RegisterValidation("design_category", func(fl validator.FieldLevel) bool {
		return models.IsDesignCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("design_type", func(fl validator.FieldLevel) bool {
		return models.IsDesignType(fl.Field().String())
	})
	return v
}

const maxBodyBytes = 1 << 20

// decodeRecord reads a full payload for kind and turns it into a record.
func decodeRecord(kind models.Kind, body io.Reader) (models.Record, error) {
	p, err := newPayload(kind)
	if err != nil {
		return models.Record{}, err
	}
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return models.Record{}, models.ValidationError("Could not read the request body.")
	}
	if err := strictUnmarshal(data, p); err != nil {
		return models.Record{}, err
	}
	if err := validate.Struct(p); err != nil {
		return models.Record{}, validationMessage(err)
	}
	rec := toRecord(p)
	if f, ok := p.(recordFinisher); ok {
		f.finish(&rec)
	}
	return rec, nil
}

// decodePatch reads a partial payload. Only the keys present in the body
// are validated and end up in the patch.
func decodePatch(kind models.Kind, body io.Reader) (models.Patch, error) {
	p, err := newPayload(kind)
	if err != nil {
		return models.Patch{}, err
	}
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return models.Patch{}, models.ValidationError("Could not read the request body.")
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return models.Patch{}, models.ValidationError("The request body is not valid JSON.")
	}
	if err := strictUnmarshal(data, p); err != nil {
		return models.Patch{}, err
	}

	present := make(map[string]bool, len(keys))
	var goNames []string
	t := reflect.TypeOf(p).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if _, ok := keys[jsonName(f)]; ok {
			present[jsonName(f)] = true
			goNames = append(goNames, f.Name)
		}
	}
	if len(goNames) > 0 {
		if err := validate.StructPartial(p, goNames...); err != nil {
			return models.Patch{}, validationMessage(err)
		}
	}
	patch := toPatch(p, present)
	if f, ok := p.(patchFinisher); ok {
		f.finishPatch(&patch)
	}
	return patch, nil
}

func strictUnmarshal(data []byte, p any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return models.ValidationError("Unknown field %s.", strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return models.ValidationError("The request body is not valid JSON.")
	}
	return nil
}

func toRecord(p any) models.Record {
	v := reflect.ValueOf(p).Elem()
	t := v.Type()
	rec := models.Record{Fields: map[string]any{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		setSlot(&rec, f, v.Field(i).Interface())
	}
	if len(rec.Fields) == 0 {
		rec.Fields = nil
	}
	return rec
}

func setSlot(rec *models.Record, f reflect.StructField, val any) {
	switch f.Tag.Get("record") {
	case "title":
		rec.Title = val.(string)
	case "category":
		rec.Category = val.(string)
	case "location":
		rec.Location = val.(string)
	case "role":
		rec.Role = val.(string)
	case "images":
		rec.Images = val.([]models.ImageRef)
	default:
		rec.Fields[jsonName(f)] = val
	}
}

func toPatch(p any, present map[string]bool) models.Patch {
	v := reflect.ValueOf(p).Elem()
	t := v.Type()
	var patch models.Patch
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if !present[name] {
			continue
		}
		val := v.Field(i).Interface()
		switch f.Tag.Get("record") {
		case "title":
			s := val.(string)
			patch.Title = &s
		case "category":
			s := val.(string)
			patch.Category = &s
		case "location":
			s := val.(string)
			patch.Location = &s
		case "role":
			s := val.(string)
			patch.Role = &s
		case "images":
			imgs := val.([]models.ImageRef)
			if imgs == nil {
				imgs = []models.ImageRef{}
			}
			patch.Images = &imgs
		default:
			if patch.Fields == nil {
				patch.Fields = map[string]any{}
			}
			patch.Fields[name] = val
		}
	}
	return patch
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.ValidationError("The request is invalid.")
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return models.ValidationError("%s is required.", field)
	case "email":
		return models.ValidationError("%s must be a valid email address.", field)
	case "url":
		return models.ValidationError("%s must be a valid URL.", field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return models.ValidationError("%s can hold at most %s items.", field, fe.Param())
		}
		return models.ValidationError("%s is too long.", field)
	case "design_category":
		return models.ValidationError("%s must be one of: %s.", field, strings.Join(models.DesignCategories(), ", "))
	case "design_type":
		return models.ValidationError("%s must be one of: %s.", field, strings.Join(models.DesignTypes(), ", "))
	}
	return models.ValidationError("%s is invalid.", field)
}

// filterFromQuery reads the equality filters a list request may carry.
func filterFromQuery(q map[string][]string) models.Filter {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	return models.Filter{
		Title:    get("title"),
		Category: get("category"),
		Location: get("location"),
		Role:     get("role"),
	}
}
