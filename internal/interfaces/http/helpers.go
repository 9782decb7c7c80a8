package http

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/imanod-api/internal/application/dto"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (gte=0, gt=0).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Los nombres de campo del error usan la etiqueta json.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// maxUploadBytes tamaño máximo de foto o logo.
const maxUploadBytes = 8 << 20

// bindAndValidate parsea el cuerpo JSON y aplica las etiquetas validate.
// Devuelve false si ya escribió la respuesta de error.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido", Details: err.Error()})
	}
	return checkStruct(c, req)
}

// bindWithUpload acepta JSON o multipart/form-data. En multipart el campo "data" lleva el JSON
// y fileField el archivo adjunto.
func bindWithUpload(c *fiber.Ctx, req interface{}, fileField string) (*dto.FileUpload, bool, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		ok, err := bindAndValidate(c, req)
		return nil, ok, err
	}
	if raw := c.FormValue("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), req); err != nil {
			return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo data inválido", Details: err.Error()})
		}
	}
	ok, err := checkStruct(c, req)
	if !ok {
		return nil, false, err
	}
	upload, err := readUpload(c, fileField)
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "archivo inválido", Details: err.Error()})
	}
	return upload, true, nil
}

func readUpload(c *fiber.Ctx, field string) (*dto.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > maxUploadBytes {
		return nil, errors.New("el archivo excede 8 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &dto.FileUpload{Filename: fh.Filename, Data: data}, nil
}

func checkStruct(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: err.Error()})
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields})
	}
	return true, nil
}

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, bool, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	return id, true, nil
}

// pageFromQuery ?limit=20&offset=0 con los límites de dto.PageRequest.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}

// queryInt64 lee un filtro numérico opcional; inválido o ausente vale 0.
func queryInt64(c *fiber.Ctx, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
