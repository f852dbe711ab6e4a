package llm

// FireClassificationPrompt captures the instructions sent to the configured
// model when judging whether a thermal anomaly is an agricultural biomass
// fire. Update this text centrally so every call stays in sync.
const FireClassificationPrompt = `You are an analyst that classifies satellite thermal-anomaly detections.

Available classifications:

- "farm": open burning of agricultural biomass - crop residue, stubble, orchard prunings, or managed field fires.

- "industrial": a persistent non-biomass heat source - gas flare, steel or brick plant, power station, refinery, landfill fire, or urban/industrial land use.

- "ambiguous": the evidence does not clearly support either label.

Rules:

- Weigh the land-use tags heavily: farmland or cropland tags favor "farm"; industrial, residential, or railway tags favor "industrial".

- A high historical event density at the same coordinate across many days suggests a fixed industrial source, not a one-off field burn.

- Very high radiative power (hundreds of MW) sustained outside cropland is rarely agricultural.

- When the feature bundle is thin or contradictory, answer "ambiguous" with low confidence rather than guessing.

You must respond ONLY with a JSON object like: {"classification": "farm", "confidence": 0.85, "reason": "short explanation"}

Now classify this detection:`
