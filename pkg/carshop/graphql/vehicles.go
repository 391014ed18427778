package graphql

import (
	"context"
	"io"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
)

const vehicleFields = `
	id
	name
	specification
	price
	images
	propulsion
	type
	stock
	options {
		id
		name
		price
		incompatibleWith
	}`

const (
	vehiclesQuery = `query Vehicles {
	vehicles {` + vehicleFields + `
	}
}`

	vehicleQuery = `query Vehicle($id: ID!) {
	vehicle(id: $id) {` + vehicleFields + `
	}
}`

	createVehicleMutation = `mutation CreateVehicle($input: VehicleInput!) {
	createVehicle(input: $input) {` + vehicleFields + `
	}
}`

	updateVehicleMutation = `mutation UpdateVehicle($id: ID!, $input: VehicleInput!) {
	updateVehicle(id: $id, input: $input) {` + vehicleFields + `
	}
}`

	deleteVehicleMutation = `mutation DeleteVehicle($id: ID!) {
	deleteVehicle(id: $id)
}`

	uploadVehicleImageMutation = `mutation UploadVehicleImage($id: ID!, $file: Upload!) {
	uploadVehicleImage(id: $id, file: $file) {` + vehicleFields + `
	}
}`
)

// VehicleService reads and administers the vehicle catalog.
type VehicleService struct {
	client *Client
}

func NewVehicleService(client *Client) *VehicleService {
	return &VehicleService{client: client}
}

// Vehicles fetches the catalog. Records failing validation are dropped and
// logged so one bad record does not hide the rest of the catalog.
func (s *VehicleService) Vehicles(ctx context.Context) ([]dal.Vehicle, error) {
	var resp struct {
		Vehicles []dal.Vehicle `json:"vehicles"`
	}
	if err := s.client.run(ctx, call{operation: "Vehicles", query: vehiclesQuery}, &resp); err != nil {
		return nil, err
	}

	vehicles := make([]dal.Vehicle, 0, len(resp.Vehicles))
	for _, v := range resp.Vehicles {
		if err := dal.Validate(v); err != nil {
			s.client.warnInvalid(ctx, "Vehicles", v.ID, err)
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// Vehicle fetches a single vehicle.
func (s *VehicleService) Vehicle(ctx context.Context, id string) (dal.Vehicle, error) {
	var resp struct {
		Vehicle *dal.Vehicle `json:"vehicle"`
	}
	op := call{operation: "Vehicle", query: vehicleQuery, vars: map[string]any{"id": id}}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Vehicle{}, err
	}
	return s.checked(resp.Vehicle)
}

// CreateVehicle adds a vehicle to the catalog.
func (s *VehicleService) CreateVehicle(ctx context.Context, input dal.VehicleInput) (dal.Vehicle, error) {
	var resp struct {
		Vehicle *dal.Vehicle `json:"createVehicle"`
	}
	op := call{operation: "CreateVehicle", query: createVehicleMutation, vars: map[string]any{"input": vehicleInputVars(input)}}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Vehicle{}, err
	}
	return s.checked(resp.Vehicle)
}

// UpdateVehicle replaces a vehicle's editable fields.
func (s *VehicleService) UpdateVehicle(ctx context.Context, id string, input dal.VehicleInput) (dal.Vehicle, error) {
	var resp struct {
		Vehicle *dal.Vehicle `json:"updateVehicle"`
	}
	op := call{operation: "UpdateVehicle", query: updateVehicleMutation, vars: map[string]any{"id": id, "input": vehicleInputVars(input)}}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Vehicle{}, err
	}
	return s.checked(resp.Vehicle)
}

// DeleteVehicle removes a vehicle from the catalog.
func (s *VehicleService) DeleteVehicle(ctx context.Context, id string) error {
	var resp struct {
		Deleted bool `json:"deleteVehicle"`
	}
	op := call{operation: "DeleteVehicle", query: deleteVehicleMutation, vars: map[string]any{"id": id}}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return nil
}

// UploadVehicleImage attaches an image to a vehicle as a multipart request.
func (s *VehicleService) UploadVehicleImage(ctx context.Context, id, filename string, body io.Reader) (dal.Vehicle, error) {
	var resp struct {
		Vehicle *dal.Vehicle `json:"uploadVehicleImage"`
	}
	op := call{
		operation: "UploadVehicleImage",
		query:     uploadVehicleImageMutation,
		vars:      map[string]any{"id": id},
		file:      &upload{field: "file", filename: filename, body: body},
	}
	if err := s.client.run(ctx, op, &resp); err != nil {
		return dal.Vehicle{}, err
	}
	return s.checked(resp.Vehicle)
}

func (s *VehicleService) checked(v *dal.Vehicle) (dal.Vehicle, error) {
	if v == nil {
		return dal.Vehicle{}, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	if err := dal.Validate(*v); err != nil {
		return dal.Vehicle{}, invalidRecord(s.client.service, "vehicle", err)
	}
	return *v, nil
}

// GraphQL Float fields take numbers, not decimal strings.
func vehicleInputVars(in dal.VehicleInput) map[string]any {
	optionIDs := in.OptionIDs
	if optionIDs == nil {
		optionIDs = []string{}
	}
	return map[string]any{
		"name":          in.Name,
		"specification": in.Specification,
		"price":         in.Price.InexactFloat64(),
		"propulsion":    in.Propulsion,
		"type":          in.Type,
		"stock":         in.Stock,
		"optionIds":     optionIDs,
	}
}
