package constants

const CH float64 = 12398.4198                     // [eV Å], h*c
const CHBar float64 = CH / 6.283185307179586       // [eV Å], hbar*c
const R0 float64 = 2.8179403262e-5                // [Å], classical electron radius
const Avogadro float64 = 6.02214076e23            // [mol^-1]
const AtomicMassUnit float64 = 1.66053906660e-27  // [kg]
const KBolzmann float64 = 1.380649e-23            // [J / K]
const Planck float64 = 6.62607015e-34             // [J s]
const AngstromPerCm float64 = 1e8                 // [Å / cm]
const AngstromSquarePerMeterSquare float64 = 1e20 // [Å^2 / m^2]
