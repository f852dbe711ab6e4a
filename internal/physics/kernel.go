package physics

import (
	"errors"
	"time"
)

// Record is the deterministic emission estimate for one clustered event.
type Record struct {
	EnergyMJ         float64 `json:"energy_mj"`
	BiomassKg        float64 `json:"biomass_kg"`
	PM25Kg           float64 `json:"pm25_kg"`
	CO2Kg            float64 `json:"co2_kg"`
	ConstantsVersion string  `json:"model_constants_version"`
	Profile          string  `json:"profile"`
}

// Quantify converts fire radiative power into an emission estimate:
// FRP (MW) held over the observation duration gives radiative energy in MJ
// (1 MW·s = 1 MJ), energy times the combustion factor gives biomass burned,
// and the profile's emission factors give pollutant masses.
//
// The function is pure: the same inputs under the same ConstantsVersion
// produce bit-identical output. Intermediates keep full float64 precision;
// rounding happens only at presentation time.
func Quantify(frpMW float64, observation time.Duration, profile Profile) (Record, error) {
	if frpMW <= 0 {
		return Record{}, errors.New("physics: power must be positive")
	}
	if observation <= 0 {
		return Record{}, errors.New("physics: observation duration must be positive")
	}

	energyMJ := frpMW * observation.Seconds()
	biomassKg := energyMJ * combustionFactorKgPerMJ

	return Record{
		EnergyMJ:         energyMJ,
		BiomassKg:        biomassKg,
		PM25Kg:           biomassKg * profile.PM25Factor,
		CO2Kg:            biomassKg * profile.CO2Factor,
		ConstantsVersion: ConstantsVersion,
		Profile:          profile.Name,
	}, nil
}
