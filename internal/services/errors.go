package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrDuplicateSubmission = errors.New("la factura ya tiene un pago en revisión o está pagada")
	ErrMissingProof        = errors.New("el comprobante de pago es obligatorio")
	ErrDuplicateInvoice    = errors.New("ya existe una factura para este periodo")
	ErrNoGuardianFound     = errors.New("el jugador no tiene un encargado asignado")
	ErrConcurrentConflict  = errors.New("conflicto concurrente al crear la factura")
	ErrFeeInUse            = errors.New("la cuota tiene facturas asociadas")
	ErrInvalidAmount       = errors.New("monto inválido")
	ErrInvalidPeriod       = errors.New("periodo inválido")
	ErrInvalidMethod       = errors.New("método de pago inválido")
	ErrInvalidInput        = errors.New("datos inválidos")
)

// notFound maps gorm's missing-row error onto ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
