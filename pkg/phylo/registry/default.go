package registry

// Default returns the built-in robot taxonomy. Signal sets are kept
// small (at most five per category) so that a single strong match
// clears the rule-confidence threshold; exemplars are one-line
// reference descriptions for similarity fallback. Callers may load a
// YAML registry instead; this one is always valid.
func Default() *Registry {
	r := New()

	r.AddCategory(Domain, Category{Name: "Physical",
		Signals:   []string{"physical", "mechanical", "hardware", "embodied"},
		Exemplars: []string{"a steel arm bolted to a factory floor lifting engine blocks"}})
	r.AddCategory(Domain, Category{Name: "Virtual",
		Signals:   []string{"virtual", "simulated", "simulation", "software agent", "digital twin"},
		Exemplars: []string{"a simulated agent navigating a game world entirely in software"}})
	r.AddCategory(Domain, Category{Name: "Hybrid",
		Signals:   []string{"cyber-physical", "hybrid environment", "mixed reality", "augmented reality"},
		Exemplars: []string{"a telepresence unit pairing a simulated cockpit with a wheeled chassis"}})

	r.AddCategory(Kingdom, Category{Name: "Industrial",
		Signals:   []string{"industrial", "factory", "manufacturing", "assembly line", "warehouse"},
		Exemplars: []string{"an assembly line manipulator welding chassis panels in a plant"}})
	r.AddCategory(Kingdom, Category{Name: "Medical",
		Signals:   []string{"medical", "hospital", "surgical", "clinical", "rehabilitation"},
		Exemplars: []string{"a surgical assistant guiding instruments during hospital procedures"}})
	r.AddCategory(Kingdom, Category{Name: "Service",
		Signals:   []string{"service", "domestic", "household", "hospitality", "concierge"},
		Exemplars: []string{"a concierge unit greeting guests and delivering room trays"}})
	r.AddCategory(Kingdom, Category{Name: "Military",
		Signals:   []string{"military", "defense", "combat", "tactical", "battlefield"},
		Exemplars: []string{"a tactical ground unit scouting a battlefield for threats"}})
	r.AddCategory(Kingdom, Category{Name: "Agriculture",
		Signals:   []string{"agriculture", "agricultural", "farming", "crop", "orchard"},
		Exemplars: []string{"an orchard machine picking fruit and spraying crops"}})
	r.AddCategory(Kingdom, Category{Name: "Space",
		Signals:   []string{"space", "orbital", "planetary", "spacecraft", "satellite"},
		Exemplars: []string{"a planetary rover traversing regolith near an orbital lander"}})
	r.AddCategory(Kingdom, Category{Name: "Marine",
		Signals:   []string{"marine", "ocean", "oceanographic", "offshore", "maritime"},
		Exemplars: []string{"an oceanographic probe drifting across offshore currents"}})
	r.AddCategory(Kingdom, Category{Name: "Research",
		Signals:   []string{"research", "laboratory", "academic", "experimental", "testbed"},
		Exemplars: []string{"a laboratory testbed platform used for academic experiments"}})
	r.AddCategory(Kingdom, Category{Name: "Entertainment",
		Signals:   []string{"entertainment", "amusement", "theme park", "stage show"},
		Exemplars: []string{"an animatronic figure performing in a theme park show"}})

	r.AddCategory(Phylum, Category{Name: "Rigid",
		Signals:   []string{"rigid", "metal frame", "steel", "aluminum", "hard shell"},
		Exemplars: []string{"a hard aluminum chassis with a welded steel frame"}})
	r.AddCategory(Phylum, Category{Name: "Soft",
		Signals:   []string{"soft", "soft body", "compliant", "elastomer", "deformable"},
		Exemplars: []string{"a compliant elastomer gripper that deforms around objects"}})
	r.AddCategory(Phylum, Category{Name: "Modular",
		Signals:   []string{"modular", "reconfigurable", "self-assembling", "detachable modules"},
		Exemplars: []string{"self-assembling cubes that reconfigure into new shapes"}})
	r.AddCategory(Phylum, Category{Name: "Swarm",
		Signals:   []string{"swarm", "collective", "flocking", "multi-robot"},
		Exemplars: []string{"hundreds of small units flocking as one collective"}})

	r.AddCategory(Class, Category{Name: "Wheeled",
		Signals:   []string{"wheeled", "wheels", "wheel-driven", "rover"},
		Exemplars: []string{"a four wheeled rover driving over gravel"}})
	r.AddCategory(Class, Category{Name: "Tracked",
		Signals:   []string{"tracked", "tracks", "caterpillar", "treads"},
		Exemplars: []string{"a tracked crawler climbing rubble on treads"}})
	r.AddCategory(Class, Category{Name: "Legged",
		Signals:   []string{"legged", "bipedal", "biped", "quadruped", "hexapod"},
		Exemplars: []string{"a quadruped walking machine climbing stairs"}})
	r.AddCategory(Class, Category{Name: "Flying",
		Signals:   []string{"flying", "aerial", "drone", "uav", "quadcopter"},
		Exemplars: []string{"a quadcopter drone hovering above a field"}})
	r.AddCategory(Class, Category{Name: "Swimming",
		Signals:   []string{"swimming", "underwater", "aquatic", "submarine", "auv"},
		Exemplars: []string{"a submarine glider diving beneath the waves"}})
	r.AddCategory(Class, Category{Name: "Stationary",
		Signals:   []string{"stationary", "fixed-base", "robotic arm", "manipulator", "gantry"},
		Exemplars: []string{"a fixed gantry arm mounted over a workbench"}})

	r.AddCategory(Order, Category{Name: "Manual",
		Signals:   []string{"manual", "manually operated", "hand-operated", "hand-guided"},
		Exemplars: []string{"a hand-guided hoist positioned by its operator"}})
	r.AddCategory(Order, Category{Name: "Teleoperated",
		Signals:   []string{"teleoperated", "teleoperation", "remote-controlled", "remotely operated", "rov"},
		Exemplars: []string{"a remotely operated vehicle driven from a control van"}})
	r.AddCategory(Order, Category{Name: "Semi_Autonomous",
		Signals:   []string{"semi-autonomous", "semi-autonomously", "semi autonomous", "supervised autonomy", "shared control"},
		Exemplars: []string{"a platform that plans locally under operator supervision"}})
	r.AddCategory(Order, Category{Name: "Autonomous",
		Signals:   []string{"autonomous", "autonomously", "self-governing", "full autonomy", "self-driving"},
		Exemplars: []string{"a self-driving unit navigating without human input"}})
	r.AddCategory(Order, Category{Name: "Collaborative",
		Signals:   []string{"collaborative", "cobot", "human-robot collaboration", "works alongside"},
		Exemplars: []string{"a cobot handing parts to a human worker"}})
	r.AddCategory(Order, Category{Name: "Swarm_Based",
		Signals:   []string{"swarm-based", "swarm robotics", "stigmergy", "collective behavior"},
		Exemplars: []string{"dozens of agents coordinating through stigmergy"}})

	r.AddCategory(Family, Category{Name: "Vision_Based",
		Signals:   []string{"vision", "camera", "cameras", "visual", "stereo vision"},
		Exemplars: []string{"a stereo camera head tracking objects visually"}})
	r.AddCategory(Family, Category{Name: "Lidar_Based",
		Signals:   []string{"lidar", "laser scanner", "laser scanning", "point cloud"},
		Exemplars: []string{"a laser scanner sweeping point clouds of the room"}})
	r.AddCategory(Family, Category{Name: "Tactile_Based",
		Signals:   []string{"tactile", "tactile sensors", "haptic", "touch sensors", "force-torque"},
		Exemplars: []string{"a gripper sensing contact forces through its skin"}})
	r.AddCategory(Family, Category{Name: "GPS_Based",
		Signals:   []string{"gps", "gnss", "satellite navigation", "waypoint navigation"},
		Exemplars: []string{"a field unit following gps waypoints across open ground"}})
	r.AddCategory(Family, Category{Name: "Acoustic_Based",
		Signals:   []string{"acoustic", "sonar", "ultrasonic", "hydrophone", "microphone array"},
		Exemplars: []string{"a sonar array listening for returning echoes"}})
	r.AddCategory(Family, Category{Name: "Chemical_Based",
		Signals:   []string{"chemical sensor", "gas sensor", "olfactory", "ph sensor"},
		Exemplars: []string{"a probe sniffing gas concentrations in a duct"}})
	r.AddCategory(Family, Category{Name: "Multimodal",
		Signals:   []string{"multimodal", "sensor fusion", "multi-sensor"},
		Exemplars: []string{"a platform fusing several sensing channels at once"}})
	r.AddCategory(Family, Category{Name: "Minimal_Sensing",
		Signals:   []string{"sensorless", "minimal sensing", "open-loop"},
		Exemplars: []string{"an open-loop walker with no feedback at all"}})

	r.AddCategory(Genus, Category{Name: "Electric",
		Signals:   []string{"electric", "electric motors", "servo", "brushless", "battery-powered"},
		Exemplars: []string{"joints driven by brushless electric motors"}})
	r.AddCategory(Genus, Category{Name: "Hydraulic",
		Signals:   []string{"hydraulic", "hydraulics", "fluid power"},
		Exemplars: []string{"limbs powered by hydraulic fluid pressure"}})
	r.AddCategory(Genus, Category{Name: "Pneumatic",
		Signals:   []string{"pneumatic", "pneumatics", "air-powered", "air muscles", "inflatable"},
		Exemplars: []string{"actuators inflated by bursts of compressed air"}})
	r.AddCategory(Genus, Category{Name: "Smart_Materials",
		Signals:   []string{"smart materials", "shape memory", "electroactive", "piezoelectric"},
		Exemplars: []string{"fingers flexing with shape memory alloy wires"}})
	r.AddCategory(Genus, Category{Name: "Bio_Hybrid",
		Signals:   []string{"bio-hybrid", "biohybrid", "living cells", "muscle tissue"},
		Exemplars: []string{"muscle tissue grown onto an artificial skeleton"}})
	r.AddCategory(Genus, Category{Name: "Magnetic",
		Signals:   []string{"magnetic", "electromagnetic coil", "magnetically actuated"},
		Exemplars: []string{"capsules steered by external magnetic fields"}})
	r.AddCategory(Genus, Category{Name: "Passive",
		Signals:   []string{"passive", "unpowered", "gravity-driven"},
		Exemplars: []string{"a walker descending slopes on gravity alone"}})
	r.AddCategory(Genus, Category{Name: "Hybrid_Actuation",
		Signals:   []string{"hybrid actuation", "electro-hydraulic", "electro-pneumatic"},
		Exemplars: []string{"a mix of electric joints and hydraulic legs"}})

	r.AddCategory(Species, Category{Name: "Surgery",
		Signals:   []string{"surgery", "surgical", "operating room", "minimally invasive"},
		Exemplars: []string{"an instrument platform for minimally invasive procedures"}})
	r.AddCategory(Species, Category{Name: "Inspection",
		Signals:   []string{"inspection", "inspect", "inspecting", "nondestructive testing"},
		Exemplars: []string{"a crawler checking weld seams for defects"}})
	r.AddCategory(Species, Category{Name: "Transport",
		Signals:   []string{"transport", "delivery", "logistics", "cargo", "agv"},
		Exemplars: []string{"a cart moving cargo between warehouse shelves"}})
	r.AddCategory(Species, Category{Name: "Assembly",
		Signals:   []string{"assembly", "assembling", "pick-and-place", "fastening"},
		Exemplars: []string{"an arm fastening screws on a production line"}})
	r.AddCategory(Species, Category{Name: "Exploration",
		Signals:   []string{"exploration", "explorer", "exploring", "expedition"},
		Exemplars: []string{"a probe surveying unmapped terrain"}})
	r.AddCategory(Species, Category{Name: "Surveillance",
		Signals:   []string{"surveillance", "patrol", "patrolling", "reconnaissance"},
		Exemplars: []string{"a patrol unit watching a perimeter at night"}})
	r.AddCategory(Species, Category{Name: "Companionship",
		Signals:   []string{"companion", "companionship", "social robot", "eldercare"},
		Exemplars: []string{"a social figure keeping elderly residents company"}})
	r.AddCategory(Species, Category{Name: "Education",
		Signals:   []string{"education", "educational", "teaching", "classroom"},
		Exemplars: []string{"a classroom kit teaching children to program"}})
	r.AddCategory(Species, Category{Name: "Mapping",
		Signals:   []string{"mapping", "cartography", "slam", "surveying"},
		Exemplars: []string{"a scanner building floor plans as it moves"}})
	r.AddCategory(Species, Category{Name: "Rescue",
		Signals:   []string{"rescue", "search and rescue", "disaster response", "emergency response"},
		Exemplars: []string{"a crawler searching collapsed buildings for survivors"}})
	r.AddCategory(Species, Category{Name: "Entertainment",
		Signals:   []string{"entertainment", "performance", "amusement", "animatronic"},
		Exemplars: []string{"an animatronic performer dancing on stage"}})
	r.AddCategory(Species, Category{Name: "Agricultural_Task",
		Signals:   []string{"weeding", "seeding", "spraying", "harvesting", "fruit picking"},
		Exemplars: []string{"a picker harvesting ripe fruit along the rows"}})
	r.AddCategory(Species, Category{Name: "Construction",
		Signals:   []string{"construction", "bricklaying", "excavation", "site work"},
		Exemplars: []string{"a bricklaying unit building walls on site"}})
	r.AddCategory(Species, Category{Name: "Maintenance",
		Signals:   []string{"maintenance", "repair", "servicing", "refurbishment"},
		Exemplars: []string{"a crawler servicing pipes from the inside"}})
	r.AddCategory(Species, Category{Name: "Environmental_Monitoring",
		Signals:   []string{"environmental monitoring", "air quality", "water quality", "pollution"},
		Exemplars: []string{"a buoy logging water quality readings offshore"}})

	r.AddExclusion(Exclusion{LevelA: Phylum, CategoryA: "Soft", LevelB: Class, CategoryB: "Wheeled",
		Reason: "soft morphology excludes rigid wheel locomotion"})
	r.AddExclusion(Exclusion{LevelA: Phylum, CategoryA: "Soft", LevelB: Class, CategoryB: "Tracked",
		Reason: "soft morphology excludes rigid track locomotion"})
	r.AddExclusion(Exclusion{LevelA: Class, CategoryA: "Stationary", LevelB: Species, CategoryB: "Transport",
		Reason: "a fixed-base platform cannot carry out transport tasks"})
	r.AddExclusion(Exclusion{LevelA: Genus, CategoryA: "Passive", LevelB: Order, CategoryB: "Autonomous",
		Reason: "passive actuation cannot sustain autonomous operation"})

	r.AddSynonyms("uav", "unmanned aerial vehicle")
	r.AddSynonyms("ugv", "unmanned ground vehicle")
	r.AddSynonyms("agv", "automated guided vehicle", "automatic guided vehicle")
	r.AddSynonyms("cobot", "collaborative robot")
	r.AddSynonyms("drone", "multirotor", "multicopter")

	return r
}
