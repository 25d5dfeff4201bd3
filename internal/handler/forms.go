package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/monkey-ranch/internal/model"
	v "github.com/iliyamo/monkey-ranch/internal/validation"
)

// CreateContact handles POST /api/contact.
func (h *Handler) CreateContact(c echo.Context) error {
	const form = "contact"
	in, err := formValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if _, err := v.Required(
		v.F("nombre", in["nombre"]),
		v.F("email", in["email"]),
		v.F("telefono", in["telefono"]),
		v.F("mensaje", in["mensaje"]),
	); err != nil {
		return reject(c, form, err)
	}
	if err := v.Email(in["email"]); err != nil {
		return reject(c, form, err)
	}

	m := &model.ContactMessage{
		Nombre:    in["nombre"],
		Email:     in["email"],
		Telefono:  in["telefono"],
		Mensaje:   in["mensaje"],
		Instagram: in["instagram"],
		Facebook:  in["facebook"],
	}
	ctx := c.Request().Context()
	if err := h.Contacts.Create(ctx, m); err != nil {
		return internal(c, form, "Error al guardar el contacto", err)
	}
	h.afterWrite(ctx, form, m.ID, m.Nombre, m.Email)
	return created(c, "¡Gracias por tu mensaje! Nos pondremos en contacto pronto.", m.ID)
}

// ListContacts handles GET /api/contacts.
func (h *Handler) ListContacts(c echo.Context) error {
	p, err := pageFrom(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	rows, err := h.Contacts.List(c.Request().Context(), p)
	if err != nil {
		return internal(c, "contact", "Error al obtener contactos", err)
	}
	return list(c, rows)
}

// CreateVip handles POST /api/vip.
func (h *Handler) CreateVip(c echo.Context) error {
	const form = "vip"
	in, err := formValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if _, err := v.Required(
		v.F("nombre", in["nombre"]),
		v.F("email", in["email"]),
		v.F("contacto", in["contacto"]),
		v.F("boletos", in["boletos"]),
	); err != nil {
		return reject(c, form, err)
	}
	if err := v.Email(in["email"]); err != nil {
		return reject(c, form, err)
	}

	reg := &model.VipRegistration{
		Nombre:   in["nombre"],
		Email:    in["email"],
		Contacto: in["contacto"],
		Boletos:  in["boletos"],
	}
	ctx := c.Request().Context()
	if err := h.Vip.Create(ctx, reg); err != nil {
		return internal(c, form, "Error al guardar el registro VIP", err)
	}
	h.afterWrite(ctx, form, reg.ID, reg.Nombre, reg.Email)
	return created(c, "¡Registro VIP recibido! Te contactaremos con los detalles.", reg.ID)
}

// ListVip handles GET /api/vip.
func (h *Handler) ListVip(c echo.Context) error {
	p, err := pageFrom(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	rows, err := h.Vip.List(c.Request().Context(), p)
	if err != nil {
		return internal(c, "vip", "Error al obtener registros VIP", err)
	}
	return list(c, rows)
}

// CreateInscription handles POST /api/inscripcion. Edad arrives as text and
// must be an integer.
func (h *Handler) CreateInscription(c echo.Context) error {
	const form = "inscription"
	in, err := formValues(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if _, err := v.Required(
		v.F("nombre", in["nombre"]),
		v.F("email", in["email"]),
		v.F("telefono", in["telefono"]),
		v.F("edad", in["edad"]),
		v.F("numero_vehiculo", in["numero_vehiculo"]),
		v.F("licencia", in["licencia"]),
	); err != nil {
		return reject(c, form, err)
	}
	if err := v.Email(in["email"]); err != nil {
		return reject(c, form, err)
	}
	edad, err := v.Int(in["edad"])
	if err != nil {
		return reject(c, form, err)
	}

	ins := &model.Inscription{
		Nombre:         in["nombre"],
		Email:          in["email"],
		Telefono:       in["telefono"],
		Edad:           edad,
		NumeroVehiculo: in["numero_vehiculo"],
		Licencia:       in["licencia"],
		Categoria:      in["categoria"],
	}
	ctx := c.Request().Context()
	if err := h.Inscriptions.Create(ctx, ins); err != nil {
		return internal(c, form, "Error al guardar la inscripción", err)
	}
	h.afterWrite(ctx, form, ins.ID, ins.Nombre, ins.Email)
	return created(c, "¡Inscripción recibida! Nos vemos en la pista.", ins.ID)
}

// ListInscriptions handles GET /api/inscripciones.
func (h *Handler) ListInscriptions(c echo.Context) error {
	p, err := pageFrom(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	rows, err := h.Inscriptions.List(c.Request().Context(), p)
	if err != nil {
		return internal(c, "inscription", "Error al obtener inscripciones", err)
	}
	return list(c, rows)
}
